package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal representa uma retirada de estoque (tabela retiradas).
// Responsible e Sector identificam quem levou e para onde. O ciclo de status
// é o mesmo do recebimento: draft na criação, posted depois do lançamento no
// ledger, void quando nenhuma linha foi aplicada.
type Withdrawal struct {
	ID            int64
	TransactionID string
	Responsible   string
	Sector        string
	Notes         string
	Status        string // draft | posted | void
	CreatedAt     time.Time

	Items []WithdrawalItem
}

// WithdrawalItem é uma linha de retirada (tabela retirada_itens).
type WithdrawalItem struct {
	ID           int64
	WithdrawalID int64
	ProductID    int64
	Quantity     decimal.Decimal
	Unit         string

	// Join opcional (listagens).
	Product *Product
}
