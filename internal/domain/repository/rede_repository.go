package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// NetworkRepository define a porta de persistência para redes de células.
type NetworkRepository interface {
	Create(ctx context.Context, network *entity.Network) error
	GetByID(ctx context.Context, id int64) (*entity.Network, error)
	List(ctx context.Context) ([]*entity.Network, error)
	Update(ctx context.Context, network *entity.Network) error
	Deactivate(ctx context.Context, id int64) error
}
