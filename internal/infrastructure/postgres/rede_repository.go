package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

var _ repository.NetworkRepository = (*NetworkRepo)(nil)

// NetworkRepo implementação de NetworkRepository sobre PostgreSQL.
type NetworkRepo struct {
	q Querier
}

// NewNetworkRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewNetworkRepository(q Querier) *NetworkRepo {
	return &NetworkRepo{q: q}
}

// Create persiste uma rede. A cor é única.
func (r *NetworkRepo) Create(ctx context.Context, network *entity.Network) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO redes (cor, hex, descricao, ativo)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		network.Color, network.Hex, network.Description, network.Active,
	).Scan(&network.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert rede: %w", err)
	}
	return nil
}

// GetByID busca uma rede ativa por ID.
func (r *NetworkRepo) GetByID(ctx context.Context, id int64) (*entity.Network, error) {
	var n entity.Network
	err := r.q.QueryRow(ctx, `
		SELECT id, cor, hex, descricao, ativo FROM redes WHERE id = $1 AND ativo = true`, id,
	).Scan(&n.ID, &n.Color, &n.Hex, &n.Description, &n.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rede: %w", err)
	}
	return &n, nil
}

// List lista redes ativas ordenadas por cor.
func (r *NetworkRepo) List(ctx context.Context) ([]*entity.Network, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, cor, hex, descricao, ativo FROM redes WHERE ativo = true ORDER BY cor`)
	if err != nil {
		return nil, fmt.Errorf("list redes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Network
	for rows.Next() {
		var n entity.Network
		if err := rows.Scan(&n.ID, &n.Color, &n.Hex, &n.Description, &n.Active); err != nil {
			return nil, fmt.Errorf("scan rede: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// Update atualiza os dados de exibição da rede.
func (r *NetworkRepo) Update(ctx context.Context, network *entity.Network) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE redes SET cor = $2, hex = $3, descricao = $4 WHERE id = $1`,
		network.ID, network.Color, network.Hex, network.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update rede: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate faz soft delete (ativo = false).
func (r *NetworkRepo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE redes SET ativo = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate rede: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
