package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalanceResponse saldo corrente de um produto.
type StockBalanceResponse struct {
	ProductID int64            `json:"produto_id"`
	Quantity  decimal.Decimal  `json:"quantidade_atual"`
	UpdatedAt time.Time        `json:"atualizado_em"`
	Product   *ProductResponse `json:"produto,omitempty"`
}

// StockMovementResponse uma linha do extrato de movimentações.
type StockMovementResponse struct {
	ID            int64           `json:"id"`
	ProductID     int64           `json:"produto_id"`
	Quantity      decimal.Decimal `json:"quantidade"`
	Type          string          `json:"tipo"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"criado_em"`
}

// StockMovementListResponse extrato paginado de um produto.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReconcileResponse resultado da conferência ledger x saldo de um produto.
type ReconcileResponse struct {
	ProductID     int64           `json:"produto_id"`
	LedgerSum     decimal.Decimal `json:"soma_ledger"`
	CachedBalance decimal.Decimal `json:"saldo_registrado"`
	Drift         decimal.Decimal `json:"desvio"`
	Repaired      bool            `json:"reparado"`
}
