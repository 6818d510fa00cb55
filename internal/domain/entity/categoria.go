package entity

// Category representa uma categoria de produtos (tabela categorias).
type Category struct {
	ID          int64
	Name        string // único
	Description string
	Color       string // cor de exibição (#RRGGBB)
	Active      bool
}
