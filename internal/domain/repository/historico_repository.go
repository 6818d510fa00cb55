package repository

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// KGHistoryRepository lê o ledger de doações por célula (historico_kg).
// Somente leitura: a escrita passa pelo motor de reconciliação.
type KGHistoryRepository interface {
	ListByCell(ctx context.Context, cellID int64, limit, offset int) ([]*entity.KGHistoryEntry, error)
}
