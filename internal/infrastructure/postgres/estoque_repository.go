package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

var _ repository.StockReadRepository = (*StockReadRepo)(nil)

// StockReadRepo consultas de leitura sobre estoque e stock_movements.
// A escrita de saldo nunca passa por aqui (ver StockLedgerStore).
type StockReadRepo struct {
	q Querier
}

// NewStockReadRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewStockReadRepository(q Querier) *StockReadRepo {
	return &StockReadRepo{q: q}
}

const stockSelect = `
	SELECT e.produto_id, e.quantidade_atual, e.version, e.atualizado_em,
	       p.id, p.nome, p.unidade, p.categoria_id, p.ativo, p.criado_em,
	       c.id, c.nome, c.descricao, c.cor, c.ativo
	FROM estoque e
	JOIN produtos p ON p.id = e.produto_id
	JOIN categorias c ON c.id = p.categoria_id`

func scanStockBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	var p entity.Product
	var c entity.Category
	err := row.Scan(
		&b.ProductID, &b.Quantity, &b.Version, &b.UpdatedAt,
		&p.ID, &p.Name, &p.Unit, &p.CategoryID, &p.Active, &p.CreatedAt,
		&c.ID, &c.Name, &c.Description, &c.Color, &c.Active,
	)
	if err != nil {
		return nil, err
	}
	p.Category = &c
	b.Product = &p
	return &b, nil
}

// List lista os saldos de produtos ativos, com produto e categoria.
func (r *StockReadRepo) List(ctx context.Context) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, stockSelect+` WHERE p.ativo = true ORDER BY p.nome`)
	if err != nil {
		return nil, fmt.Errorf("list estoque: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanStockBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan estoque: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// GetByProduct busca o saldo de um produto. Devolve nil quando o produto
// ainda não tem linha de estoque (nenhuma entrada registrada).
func (r *StockReadRepo) GetByProduct(ctx context.Context, productID int64) (*entity.StockBalance, error) {
	row := r.q.QueryRow(ctx, stockSelect+` WHERE e.produto_id = $1`, productID)
	b, err := scanStockBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estoque: %w", err)
	}
	return b, nil
}

// ListMovements lista o extrato do ledger de um produto, mais recentes primeiro.
func (r *StockReadRepo) ListMovements(ctx context.Context, productID int64, limit, offset int) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, produto_id, quantidade, tipo, source_transaction_id, line_index, criado_em
		FROM stock_movements WHERE produto_id = $1
		ORDER BY criado_em DESC, id DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.Type, &m.SourceTransactionID, &m.LineIndex, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
