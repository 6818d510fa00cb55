package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance representa o saldo corrente de um produto (tabela estoque,
// uma linha por produto). É o cache materializado do ledger stock_movements:
// criado na primeira entrada do produto, nunca removido, nunca negativo.
// Version incrementa a cada escrita (compare-and-set).
type StockBalance struct {
	ProductID int64
	Quantity  decimal.Decimal
	Version   int64
	UpdatedAt time.Time

	// Join opcional (listagens).
	Product *Product
}
