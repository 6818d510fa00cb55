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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementação de ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste um produto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO produtos (nome, unidade, categoria_id, ativo, criado_em)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		product.Name, product.Unit, product.CategoryID, product.Active, product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound // categoria inexistente
		}
		return fmt.Errorf("insert produto: %w", err)
	}
	return nil
}

const productSelect = `
	SELECT p.id, p.nome, p.unidade, p.categoria_id, p.ativo, p.criado_em,
	       c.id, c.nome, c.descricao, c.cor, c.ativo
	FROM produtos p
	JOIN categorias c ON c.id = p.categoria_id`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var c entity.Category
	err := row.Scan(
		&p.ID, &p.Name, &p.Unit, &p.CategoryID, &p.Active, &p.CreatedAt,
		&c.ID, &c.Name, &c.Description, &c.Color, &c.Active,
	)
	if err != nil {
		return nil, err
	}
	p.Category = &c
	return &p, nil
}

// GetByID busca um produto ativo (com categoria) por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1 AND p.ativo = true`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get produto: %w", err)
	}
	return p, nil
}

// List lista produtos ativos (com categoria) ordenados por nome.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, productSelect+` WHERE p.ativo = true ORDER BY p.nome`)
	if err != nil {
		return nil, fmt.Errorf("list produtos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan produto: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update atualiza um produto.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE produtos SET nome = $2, unidade = $3, categoria_id = $4 WHERE id = $1`,
		product.ID, product.Name, product.Unit, product.CategoryID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate faz soft delete. O estoque e o ledger do produto permanecem.
func (r *ProductRepo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE produtos SET ativo = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Exists verifica se o produto existe e está ativo (KeyChecker do ledger).
func (r *ProductRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM produtos WHERE id = $1 AND ativo = true)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists produto: %w", err)
	}
	return exists, nil
}

// ListIDs devolve os IDs de todos os produtos ativos (varredura de reconciliação).
func (r *ProductRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM produtos WHERE ativo = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list ids produtos: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id produto: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
