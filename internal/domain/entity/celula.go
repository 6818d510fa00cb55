package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cell representa uma célula (tabela celulas).
// QuantityKG é o saldo acumulado de doações; é o cache do ledger historico_kg
// e só deve ser alterado pelo motor de reconciliação. Version acompanha cada
// escrita do saldo (controle otimista de concorrência).
type Cell struct {
	ID          int64
	Name        string
	Leader      string
	Supervisors string
	Phone       string
	Address     string
	NetworkID   int64
	QuantityKG  decimal.Decimal
	Version     int64
	Active      bool
	CreatedAt   time.Time

	// Join opcional (listagens).
	Network *Network
}
