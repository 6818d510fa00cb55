package postgres

import (
	"context"
	"fmt"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

var _ repository.KGHistoryRepository = (*KGHistoryRepo)(nil)

// KGHistoryRepo leitura do ledger historico_kg.
type KGHistoryRepo struct {
	q Querier
}

// NewKGHistoryRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewKGHistoryRepository(q Querier) *KGHistoryRepo {
	return &KGHistoryRepo{q: q}
}

// ListByCell lista os lançamentos de uma célula, mais recentes primeiro.
func (r *KGHistoryRepo) ListByCell(ctx context.Context, cellID int64, limit, offset int) ([]*entity.KGHistoryEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, celula_id, quantidade, data_chegada, source_transaction_id, line_index
		FROM historico_kg WHERE celula_id = $1
		ORDER BY data_chegada DESC, id DESC LIMIT $2 OFFSET $3`,
		cellID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list historico: %w", err)
	}
	defer rows.Close()
	var list []*entity.KGHistoryEntry
	for rows.Next() {
		var e entity.KGHistoryEntry
		if err := rows.Scan(&e.ID, &e.CellID, &e.Quantity, &e.DeliveredAt, &e.SourceTransactionID, &e.LineIndex); err != nil {
			return nil, fmt.Errorf("scan historico: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
