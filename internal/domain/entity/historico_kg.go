package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// KGHistoryEntry é uma linha do ledger de doações por célula (tabela
// historico_kg, append-only). Mesmo formato do ledger de estoque, mas a chave
// é a célula e o saldo materializado é celulas.quantidade_kg.
type KGHistoryEntry struct {
	ID                  int64
	CellID              int64
	Quantity            decimal.Decimal
	DeliveredAt         time.Time
	SourceTransactionID string
	LineIndex           int
}
