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

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementação de ReceiptRepository sobre PostgreSQL.
// Create usa transação própria: cabeçalho e itens entram juntos ou nada entra.
type ReceiptRepo struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository constrói o adaptador.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

// Create grava cabeçalho + itens numa transação. ErrDuplicate quando o
// transaction_id já foi usado (guarda de idempotência anterior ao ledger).
func (r *ReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	err := runTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO receipts (transaction_id, notes, status, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			receipt.TransactionID, receipt.Notes, receipt.Status, receipt.CreatedBy, receipt.CreatedAt,
		).Scan(&receipt.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert receipt: %w", err)
		}
		for i := range receipt.Items {
			item := &receipt.Items[i]
			item.ReceiptID = receipt.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO receipt_items (receipt_id, product_id, quantity, unit, expires_at, priority, barcode, lot_code)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`,
				item.ReceiptID, item.ProductID, item.Quantity, item.Unit,
				item.ExpiresAt, item.Priority, item.Barcode, item.LotCode,
			).Scan(&item.ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return domain.ErrNotFound // produto inexistente
				}
				return fmt.Errorf("insert receipt item: %w", err)
			}
		}
		return nil
	})
	return err
}

// GetByID busca um recebimento com itens e produtos.
func (r *ReceiptRepo) GetByID(ctx context.Context, id int64) (*entity.Receipt, error) {
	var rec entity.Receipt
	err := r.pool.QueryRow(ctx, `
		SELECT id, transaction_id, notes, status, created_by, created_at
		FROM receipts WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.TransactionID, &rec.Notes, &rec.Status, &rec.CreatedBy, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	items, err := r.loadItems(ctx, []int64{rec.ID})
	if err != nil {
		return nil, err
	}
	rec.Items = items[rec.ID]
	return &rec, nil
}

// List lista recebimentos (mais recentes primeiro) com itens.
func (r *ReceiptRepo) List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, transaction_id, notes, status, created_by, created_at
		FROM receipts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Receipt
	var ids []int64
	for rows.Next() {
		var rec entity.Receipt
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.Notes, &rec.Status, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, &rec)
		ids = append(ids, rec.ID)
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
	for _, rec := range list {
		rec.Items = items[rec.ID]
	}
	return list, nil
}

// UpdateStatus muda o status do recebimento (draft -> posted | void).
func (r *ReceiptRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE receipts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update status receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// loadItems carrega os itens (com produto e categoria) dos recebimentos.
func (r *ReceiptRepo) loadItems(ctx context.Context, receiptIDs []int64) (map[int64][]entity.ReceiptItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.receipt_id, i.product_id, i.quantity, i.unit, i.expires_at, i.priority, i.barcode, i.lot_code,
		       p.id, p.nome, p.unidade, p.categoria_id, p.ativo, p.criado_em,
		       c.id, c.nome, c.descricao, c.cor, c.ativo
		FROM receipt_items i
		JOIN produtos p ON p.id = i.product_id
		JOIN categorias c ON c.id = p.categoria_id
		WHERE i.receipt_id = ANY($1)
		ORDER BY i.id`, receiptIDs)
	if err != nil {
		return nil, fmt.Errorf("load receipt items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]entity.ReceiptItem, len(receiptIDs))
	for rows.Next() {
		var item entity.ReceiptItem
		var p entity.Product
		var c entity.Category
		if err := rows.Scan(
			&item.ID, &item.ReceiptID, &item.ProductID, &item.Quantity, &item.Unit,
			&item.ExpiresAt, &item.Priority, &item.Barcode, &item.LotCode,
			&p.ID, &p.Name, &p.Unit, &p.CategoryID, &p.Active, &p.CreatedAt,
			&c.ID, &c.Name, &c.Description, &c.Color, &c.Active,
		); err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		p.Category = &c
		item.Product = &p
		out[item.ReceiptID] = append(out[item.ReceiptID], item)
	}
	return out, rows.Err()
}
