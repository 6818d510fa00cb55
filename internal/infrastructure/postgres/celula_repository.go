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

var _ repository.CellRepository = (*CellRepo)(nil)

// CellRepo implementação de CellRepository sobre PostgreSQL.
// quantidade_kg e version nunca são escritos por aqui: pertencem ao
// CellLedgerStore.
type CellRepo struct {
	q Querier
}

// NewCellRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewCellRepository(q Querier) *CellRepo {
	return &CellRepo{q: q}
}

// Create persiste uma célula com saldo e versão zerados.
func (r *CellRepo) Create(ctx context.Context, cell *entity.Cell) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO celulas (nome, lider, supervisores, telefone, endereco, rede_id, quantidade_kg, version, ativo, criado_em)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8)
		RETURNING id`,
		cell.Name, cell.Leader, cell.Supervisors, cell.Phone, cell.Address, cell.NetworkID, cell.Active, cell.CreatedAt,
	).Scan(&cell.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound // rede inexistente
		}
		return fmt.Errorf("insert celula: %w", err)
	}
	return nil
}

const cellSelect = `
	SELECT c.id, c.nome, c.lider, c.supervisores, c.telefone, c.endereco,
	       c.rede_id, c.quantidade_kg, c.version, c.ativo, c.criado_em,
	       r.id, r.cor, r.hex, r.descricao, r.ativo
	FROM celulas c
	JOIN redes r ON r.id = c.rede_id`

func scanCell(row pgx.Row) (*entity.Cell, error) {
	var c entity.Cell
	var n entity.Network
	err := row.Scan(
		&c.ID, &c.Name, &c.Leader, &c.Supervisors, &c.Phone, &c.Address,
		&c.NetworkID, &c.QuantityKG, &c.Version, &c.Active, &c.CreatedAt,
		&n.ID, &n.Color, &n.Hex, &n.Description, &n.Active,
	)
	if err != nil {
		return nil, err
	}
	c.Network = &n
	return &c, nil
}

// GetByID busca uma célula ativa (com a rede) por ID.
func (r *CellRepo) GetByID(ctx context.Context, id int64) (*entity.Cell, error) {
	row := r.q.QueryRow(ctx, cellSelect+` WHERE c.id = $1 AND c.ativo = true`, id)
	c, err := scanCell(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get celula: %w", err)
	}
	return c, nil
}

// List lista células ativas (com rede) ordenadas por nome.
func (r *CellRepo) List(ctx context.Context) ([]*entity.Cell, error) {
	rows, err := r.q.Query(ctx, cellSelect+` WHERE c.ativo = true ORDER BY c.nome`)
	if err != nil {
		return nil, fmt.Errorf("list celulas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Cell
	for rows.Next() {
		c, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("scan celula: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update atualiza os dados cadastrais da célula (não toca em quantidade_kg).
func (r *CellRepo) Update(ctx context.Context, cell *entity.Cell) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE celulas
		SET nome = $2, lider = $3, supervisores = $4, telefone = $5, endereco = $6, rede_id = $7
		WHERE id = $1`,
		cell.ID, cell.Name, cell.Leader, cell.Supervisors, cell.Phone, cell.Address, cell.NetworkID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update celula: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate faz soft delete (ativo = false). O histórico de kg permanece.
func (r *CellRepo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `UPDATE celulas SET ativo = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate celula: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Exists verifica se a célula existe e está ativa (KeyChecker do ledger).
func (r *CellRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM celulas WHERE id = $1 AND ativo = true)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists celula: %w", err)
	}
	return exists, nil
}

// ListIDs devolve os IDs de todas as células ativas (varredura de reconciliação).
func (r *CellRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM celulas WHERE ativo = true ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list ids celulas: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id celula: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
