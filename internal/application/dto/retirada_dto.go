package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalItemRequest uma linha de retirada.
type WithdrawalItemRequest struct {
	ProductID int64           `json:"produto_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantidade" validate:"required"`
	Unit      string          `json:"unidade" validate:"required,oneof=kg un lt pct cx"`
}

// CreateWithdrawalRequest entrada para registrar uma retirada de estoque.
// Mesma semântica de TransactionID do recebimento.
type CreateWithdrawalRequest struct {
	TransactionID string                  `json:"transaction_id" validate:"omitempty,max=80"`
	Responsible   string                  `json:"responsavel" validate:"required,min=2,max=120"`
	Sector        string                  `json:"setor" validate:"required,min=2,max=120"`
	Notes         string                  `json:"observacoes" validate:"max=500"`
	Items         []WithdrawalItemRequest `json:"itens" validate:"required,min=1,dive"`
}

// WithdrawalItemResponse saída de uma linha de retirada.
type WithdrawalItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"produto_id"`
	Quantity  decimal.Decimal  `json:"quantidade"`
	Unit      string           `json:"unidade"`
	Product   *ProductResponse `json:"produto,omitempty"`
}

// WithdrawalResponse saída de uma retirada.
type WithdrawalResponse struct {
	ID            int64                    `json:"id"`
	TransactionID string                   `json:"transaction_id"`
	Responsible   string                   `json:"responsavel"`
	Sector        string                   `json:"setor"`
	Notes         string                   `json:"observacoes"`
	Status        string                   `json:"status"`
	CreatedAt     time.Time                `json:"criado_em"`
	Items         []WithdrawalItemResponse `json:"itens"`
}

// WithdrawalListResponse lista paginada de retiradas.
type WithdrawalListResponse struct {
	Items []WithdrawalResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// CreateWithdrawalResponse retirada gravada + resultado do lançamento.
type CreateWithdrawalResponse struct {
	Withdrawal WithdrawalResponse `json:"retirada"`
	Posting    PostingResponse    `json:"lancamento"`
}
