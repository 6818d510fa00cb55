package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimento de estoque.
const (
	MovementTypeIN  = "IN"  // entrada (recebimento)
	MovementTypeOUT = "OUT" // saída (retirada)
)

// StockMovement é uma linha do ledger de estoque (tabela stock_movements,
// append-only). Quantity é assinada: positiva para IN, negativa para OUT.
// O par (SourceTransactionID, LineIndex) é único e serve de guarda de
// idempotência contra reenvio da mesma transação.
type StockMovement struct {
	ID                  int64
	ProductID           int64
	Quantity            decimal.Decimal
	Type                string // IN | OUT
	SourceTransactionID string
	LineIndex           int
	CreatedAt           time.Time
}
