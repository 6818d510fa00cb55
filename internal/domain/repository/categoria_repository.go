package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// CategoryRepository define a porta de persistência para categorias.
// Delete pode falhar com ErrInUse quando há produtos referenciando a
// categoria (restrição de integridade do banco, não regra da aplicação).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}
