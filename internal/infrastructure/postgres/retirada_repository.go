package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

var _ repository.WithdrawalRepository = (*WithdrawalRepo)(nil)

// WithdrawalRepo implementação de WithdrawalRepository sobre PostgreSQL.
type WithdrawalRepo struct {
	pool *pgxpool.Pool
}

// NewWithdrawalRepository constrói o adaptador.
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// Create grava cabeçalho + itens numa transação. ErrDuplicate em
// transaction_id repetido.
func (r *WithdrawalRepo) Create(ctx context.Context, withdrawal *entity.Withdrawal) error {
	return runTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO retiradas (transaction_id, responsavel, setor, observacoes, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			withdrawal.TransactionID, withdrawal.Responsible, withdrawal.Sector, withdrawal.Notes, withdrawal.Status, withdrawal.CreatedAt,
		).Scan(&withdrawal.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert retirada: %w", err)
		}
		for i := range withdrawal.Items {
			item := &withdrawal.Items[i]
			item.WithdrawalID = withdrawal.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO retirada_itens (retirada_id, product_id, quantity, unit)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				item.WithdrawalID, item.ProductID, item.Quantity, item.Unit,
			).Scan(&item.ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrNotFound
				}
				return fmt.Errorf("insert retirada item: %w", err)
			}
		}
		return nil
	})
}

// GetByID busca uma retirada com itens.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id int64) (*entity.Withdrawal, error) {
	var w entity.Withdrawal
	err := r.pool.QueryRow(ctx, `
		SELECT id, transaction_id, responsavel, setor, observacoes, status, created_at
		FROM retiradas WHERE id = $1`, id,
	).Scan(&w.ID, &w.TransactionID, &w.Responsible, &w.Sector, &w.Notes, &w.Status, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get retirada: %w", err)
	}
	items, err := r.loadItems(ctx, []int64{w.ID})
	if err != nil {
		return nil, err
	}
	w.Items = items[w.ID]
	return &w, nil
}

// List lista retiradas (mais recentes primeiro) com itens.
func (r *WithdrawalRepo) List(ctx context.Context, limit, offset int) ([]*entity.Withdrawal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, responsavel, setor, observacoes, status, created_at
		FROM retiradas ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list retiradas: %w", err)
	}
	defer rows.Close()

	var list []*entity.Withdrawal
	var ids []int64
	for rows.Next() {
		var w entity.Withdrawal
		if err := rows.Scan(&w.ID, &w.TransactionID, &w.Responsible, &w.Sector, &w.Notes, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan retirada: %w", err)
		}
		list = append(list, &w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, w := range list {
		w.Items = items[w.ID]
	}
	return list, nil
}

// UpdateStatus muda o status da retirada (draft -> posted | void).
func (r *WithdrawalRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE retiradas SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update status retirada: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WithdrawalRepo) loadItems(ctx context.Context, withdrawalIDs []int64) (map[int64][]entity.WithdrawalItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.retirada_id, i.product_id, i.quantity, i.unit,
		       p.id, p.nome, p.unidade, p.categoria_id, p.ativo, p.criado_em
		FROM retirada_itens i
		JOIN produtos p ON p.id = i.product_id
		WHERE i.retirada_id = ANY($1)
		ORDER BY i.id`, withdrawalIDs)
	if err != nil {
		return nil, fmt.Errorf("load retirada itens: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.WithdrawalItem, len(withdrawalIDs))
	for rows.Next() {
		var item entity.WithdrawalItem
		var p entity.Product
		if err := rows.Scan(
			&item.ID, &item.WithdrawalID, &item.ProductID, &item.Quantity, &item.Unit,
			&p.ID, &p.Name, &p.Unit, &p.CategoryID, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan retirada item: %w", err)
		}
		item.Product = &p
		out[item.WithdrawalID] = append(out[item.WithdrawalID], item)
	}
	return out, rows.Err()
}
