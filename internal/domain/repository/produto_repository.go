package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// ProductRepository define a porta de persistência para produtos.
// Produtos nunca são removidos fisicamente (soft delete via ativo=false).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Deactivate(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	ListIDs(ctx context.Context) ([]int64, error)
}
