package entity

// Network representa uma rede de células (tabela redes).
// A rede é identificada pela cor (Amarela, Azul, Branca, Vermelha, Verde).
type Network struct {
	ID          int64
	Color       string // nome da cor, único
	Hex         string // cor de exibição (#RRGGBB)
	Description string
	Active      bool
}
