package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCellRequest entrada para criar uma célula. O saldo de kg inicia em
// zero; doações entram por RegisterDonationRequest.
type CreateCellRequest struct {
	Name        string `json:"nome" validate:"required,min=2,max=120"`
	Leader      string `json:"lider" validate:"required,min=2,max=120"`
	Supervisors string `json:"supervisores" validate:"max=200"`
	Phone       string `json:"telefone" validate:"max=30"`
	Address     string `json:"endereco" validate:"max=300"`
	NetworkID   int64  `json:"rede_id" validate:"required,gt=0"`
}

// UpdateCellRequest entrada para atualizar uma célula (campos opcionais).
// quantidade_kg não é aceito aqui: o saldo só muda pelo ledger.
type UpdateCellRequest struct {
	Name        *string `json:"nome" validate:"omitempty,min=2,max=120"`
	Leader      *string `json:"lider" validate:"omitempty,min=2,max=120"`
	Supervisors *string `json:"supervisores" validate:"omitempty,max=200"`
	Phone       *string `json:"telefone" validate:"omitempty,max=30"`
	Address     *string `json:"endereco" validate:"omitempty,max=300"`
	NetworkID   *int64  `json:"rede_id" validate:"omitempty,gt=0"`
}

// RegisterDonationRequest entrada para registrar uma doação de kg da célula.
// TransactionID é opcional: quando vazio, o servidor gera um UUID. DataChegada
// opcional permite lançar doações de datas passadas.
type RegisterDonationRequest struct {
	Quantity      decimal.Decimal `json:"quantidade_kg" validate:"required"`
	DeliveredAt   *time.Time      `json:"data_chegada"`
	TransactionID string          `json:"transaction_id" validate:"omitempty,max=80"`
}

// DonationResponse confirmação de uma doação lançada.
type DonationResponse struct {
	TransactionID string          `json:"transaction_id"`
	CellID        int64           `json:"celula_id"`
	Quantity      decimal.Decimal `json:"quantidade_kg"`
	NewTotal      decimal.Decimal `json:"total_kg"`
}

// CellResponse saída de uma célula.
type CellResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"nome"`
	Leader      string           `json:"lider"`
	Supervisors string           `json:"supervisores"`
	Phone       string           `json:"telefone"`
	Address     string           `json:"endereco"`
	NetworkID   int64            `json:"rede_id"`
	QuantityKG  decimal.Decimal  `json:"quantidade_kg"`
	Active      bool             `json:"ativo"`
	CreatedAt   time.Time        `json:"criado_em"`
	Network     *NetworkResponse `json:"rede,omitempty"`
}

// CellReconcileResponse resultado da conferência extrato x total da célula.
type CellReconcileResponse struct {
	CellID        int64           `json:"celula_id"`
	LedgerSum     decimal.Decimal `json:"soma_ledger"`
	CachedBalance decimal.Decimal `json:"saldo_registrado"`
	Drift         decimal.Decimal `json:"desvio"`
	Repaired      bool            `json:"reparado"`
}

// KGHistoryResponse uma linha do extrato de doações da célula.
type KGHistoryResponse struct {
	ID            int64           `json:"id"`
	Quantity      decimal.Decimal `json:"quantidade"`
	DeliveredAt   time.Time       `json:"data_chegada"`
	TransactionID string          `json:"transaction_id"`
}

// KGHistoryListResponse extrato paginado de doações da célula.
type KGHistoryListResponse struct {
	Items []KGHistoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
