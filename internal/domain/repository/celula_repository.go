package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// CellRepository define a porta de persistência para células.
// QuantityKG e Version não são escritos por aqui: pertencem ao ledger
// (CellLedgerStore); Create inicia ambos em zero.
type CellRepository interface {
	Create(ctx context.Context, cell *entity.Cell) error
	GetByID(ctx context.Context, id int64) (*entity.Cell, error)
	List(ctx context.Context) ([]*entity.Cell, error)
	Update(ctx context.Context, cell *entity.Cell) error
	Deactivate(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	ListIDs(ctx context.Context) ([]int64, error)
}
