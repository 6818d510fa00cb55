package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo agregados read-only para o painel.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository constrói o adaptador. Aceita pool ou tx (Querier).
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// CountActiveCells conta células ativas.
func (r *DashboardRepo) CountActiveCells(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM celulas WHERE ativo = true`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count celulas: %w", err)
	}
	return n, nil
}

// CountReceipts conta recebimentos postados.
func (r *DashboardRepo) CountReceipts(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM receipts WHERE status = $1`, entity.StatusPosted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count receipts: %w", err)
	}
	return n, nil
}

// CountActiveProducts conta produtos ativos.
func (r *DashboardRepo) CountActiveProducts(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM produtos WHERE ativo = true`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count produtos: %w", err)
	}
	return n, nil
}

// RecentReceipts lista os últimos recebimentos (cabeçalho apenas, sem itens).
func (r *DashboardRepo) RecentReceipts(ctx context.Context, limit int) ([]*entity.Receipt, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, notes, status, created_by, created_at
		FROM receipts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		var rec entity.Receipt
		if err := rows.Scan(&rec.ID, &rec.TransactionID, &rec.Notes, &rec.Status, &rec.CreatedBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// NetworkRankings soma kg doados por rede a partir do ledger historico_kg.
// since, quando informado, restringe o período (ex.: início do mês corrente).
func (r *DashboardRepo) NetworkRankings(ctx context.Context, since *time.Time) ([]repository.NetworkRanking, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rd.id, rd.cor, rd.hex,
		       COALESCE(SUM(h.quantidade), 0) AS total_kg,
		       COUNT(DISTINCT ce.id) AS celulas
		FROM redes rd
		LEFT JOIN celulas ce ON ce.rede_id = rd.id AND ce.ativo = true
		LEFT JOIN historico_kg h ON h.celula_id = ce.id
		     AND ($1::timestamptz IS NULL OR h.data_chegada >= $1)
		WHERE rd.ativo = true
		GROUP BY rd.id, rd.cor, rd.hex
		ORDER BY total_kg DESC, rd.cor`, since)
	if err != nil {
		return nil, fmt.Errorf("network rankings: %w", err)
	}
	defer rows.Close()
	var list []repository.NetworkRanking
	for rows.Next() {
		var nr repository.NetworkRanking
		if err := rows.Scan(&nr.NetworkID, &nr.Color, &nr.Hex, &nr.TotalKG, &nr.CellCount); err != nil {
			return nil, fmt.Errorf("scan network ranking: %w", err)
		}
		list = append(list, nr)
	}
	return list, rows.Err()
}

// CellRankings lista as células que mais doaram (total acumulado).
func (r *DashboardRepo) CellRankings(ctx context.Context, limit int) ([]repository.CellRanking, error) {
	rows, err := r.q.Query(ctx, `
		SELECT ce.id, ce.nome, ce.lider, rd.id, rd.cor,
		       COALESCE(SUM(h.quantidade), 0) AS total_kg
		FROM celulas ce
		JOIN redes rd ON rd.id = ce.rede_id
		LEFT JOIN historico_kg h ON h.celula_id = ce.id
		WHERE ce.ativo = true
		GROUP BY ce.id, ce.nome, ce.lider, rd.id, rd.cor
		ORDER BY total_kg DESC, ce.nome
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("cell rankings: %w", err)
	}
	defer rows.Close()
	var list []repository.CellRanking
	for rows.Next() {
		var cr repository.CellRanking
		if err := rows.Scan(&cr.CellID, &cr.Name, &cr.Leader, &cr.NetworkID, &cr.Color, &cr.TotalKG); err != nil {
			return nil, fmt.Errorf("scan cell ranking: %w", err)
		}
		list = append(list, cr)
	}
	return list, rows.Err()
}
