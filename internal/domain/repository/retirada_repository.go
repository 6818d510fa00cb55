package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// WithdrawalRepository define a porta de persistência para retiradas.
// Mesmas garantias do ReceiptRepository: cabeçalho+itens atômicos e
// ErrDuplicate em transaction_id repetido.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entity.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*entity.Withdrawal, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Withdrawal, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
