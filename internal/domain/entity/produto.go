package entity

import "time"

// Product representa um produto do estoque (tabela produtos).
// O saldo não mora aqui: fica em estoque (StockBalance), alimentado pelo ledger.
type Product struct {
	ID         int64
	Name       string
	Unit       string // unidade de exibição: kg, un, litros...
	CategoryID int64
	Active     bool
	CreatedAt  time.Time

	// Join opcional (listagens).
	Category *Category
}
