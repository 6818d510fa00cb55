package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// StockReadRepository lê saldos de estoque com join de produto/categoria
// para as telas de listagem. Somente leitura: a escrita de saldo passa pelo
// motor de reconciliação (StockLedgerStore).
type StockReadRepository interface {
	List(ctx context.Context) ([]*entity.StockBalance, error)
	GetByProduct(ctx context.Context, productID int64) (*entity.StockBalance, error)
	ListMovements(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error)
}
