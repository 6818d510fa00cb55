package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status de um recebimento ou retirada.
const (
	StatusDraft  = "draft"
	StatusPosted = "posted"
	StatusVoid   = "void"
)

// Prioridades de item de recebimento.
const (
	PriorityNormal   = "normal"
	PriorityImediato = "imediato"
)

// Receipt representa um recebimento de doações (tabela receipts).
// Imutável depois de postado; o efeito no estoque é lançado pelo ledger
// usando TransactionID como source_transaction_id.
type Receipt struct {
	ID            int64
	TransactionID string
	Notes         string
	Status        string // draft | posted | void
	CreatedBy     int64
	CreatedAt     time.Time

	Items []ReceiptItem
}

// ReceiptItem é uma linha de recebimento (tabela receipt_items).
type ReceiptItem struct {
	ID        int64
	ReceiptID int64
	ProductID int64
	Quantity  decimal.Decimal
	Unit      string
	ExpiresAt *time.Time
	Priority  string // normal | imediato
	Barcode   string
	LotCode   string

	// Join opcional (listagens).
	Product *Product
}
