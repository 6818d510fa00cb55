package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptItemRequest uma linha de recebimento.
type ReceiptItemRequest struct {
	ProductID int64           `json:"produto_id" validate:"required,gt=0"`
	Quantity  decimal.Decimal `json:"quantidade" validate:"required"`
	Unit      string          `json:"unidade" validate:"required,oneof=kg un lt pct cx"`
	ExpiresAt *time.Time      `json:"validade"`
	Priority  string          `json:"prioridade" validate:"omitempty,oneof=normal imediato"`
	Barcode   string          `json:"codigo_barras" validate:"max=60"`
	LotCode   string          `json:"lote" validate:"max=60"`
}

// CreateReceiptRequest entrada para registrar um recebimento de doações.
// TransactionID é opcional: quando vazio, o servidor gera um UUID; quando
// informado, reenvios do mesmo ID são rejeitados como duplicados.
type CreateReceiptRequest struct {
	TransactionID string               `json:"transaction_id" validate:"omitempty,max=80"`
	Notes         string               `json:"observacoes" validate:"max=500"`
	Items         []ReceiptItemRequest `json:"itens" validate:"required,min=1,dive"`
}

// ReceiptItemResponse saída de uma linha de recebimento.
type ReceiptItemResponse struct {
	ID        int64            `json:"id"`
	ProductID int64            `json:"produto_id"`
	Quantity  decimal.Decimal  `json:"quantidade"`
	Unit      string           `json:"unidade"`
	ExpiresAt *time.Time       `json:"validade,omitempty"`
	Priority  string           `json:"prioridade"`
	Barcode   string           `json:"codigo_barras,omitempty"`
	LotCode   string           `json:"lote,omitempty"`
	Product   *ProductResponse `json:"produto,omitempty"`
}

// ReceiptResponse saída de um recebimento.
type ReceiptResponse struct {
	ID            int64                 `json:"id"`
	TransactionID string                `json:"transaction_id"`
	Notes         string                `json:"observacoes"`
	Status        string                `json:"status"`
	CreatedBy     int64                 `json:"criado_por"`
	CreatedAt     time.Time             `json:"criado_em"`
	Items         []ReceiptItemResponse `json:"itens"`
}

// ReceiptListResponse lista paginada de recebimentos.
type ReceiptListResponse struct {
	Items []ReceiptResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PostingLineResult desfecho de uma linha lançada no estoque.
type PostingLineResult struct {
	Index      int             `json:"index"`
	ProductID  int64           `json:"produto_id"`
	Quantity   decimal.Decimal `json:"quantidade"`
	NewBalance decimal.Decimal `json:"novo_saldo"`
}

// PostingLineFailure desfecho de uma linha que não entrou no estoque.
type PostingLineFailure struct {
	Index     int             `json:"index"`
	ProductID int64           `json:"produto_id"`
	Quantity  decimal.Decimal `json:"quantidade"`
	Reason    string          `json:"motivo"`
}

// PostingResponse resultado do lançamento de uma transação no estoque.
// Status distingue os três desfechos possíveis: "posted" (todas as linhas
// gravadas), "partial" (parte gravada, parte com falha) — nunca os dois
// colapsados num erro genérico.
type PostingResponse struct {
	TransactionID string               `json:"transaction_id"`
	Status        string               `json:"status"` // posted | partial
	Committed     []PostingLineResult  `json:"gravadas"`
	Failed        []PostingLineFailure `json:"falhas,omitempty"`
}

// CreateReceiptResponse recebimento gravado + resultado do lançamento.
type CreateReceiptResponse struct {
	Receipt ReceiptResponse `json:"recebimento"`
	Posting PostingResponse `json:"lancamento"`
}
