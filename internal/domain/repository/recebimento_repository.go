package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// ReceiptRepository define a porta de persistência para recebimentos.
// Create grava cabeçalho e itens como uma unidade (mesma transação SQL) e
// retorna ErrDuplicate quando o transaction_id já existe — é a primeira
// barreira de idempotência, antes do ledger.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, id int64) (*entity.Receipt, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
