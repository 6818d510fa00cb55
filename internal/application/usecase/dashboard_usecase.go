package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

const (
	recentReceiptsLimit = 5
	topCellsLimit       = 10
)

// DashboardUseCase monta os agregados do painel inicial: contadores,
// recebimentos recentes e rankings de redes e células por kg doado.
type DashboardUseCase struct {
	repo repository.DashboardRepository
}

// NewDashboardUseCase constrói o caso de uso.
func NewDashboardUseCase(repo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

// Get consulta os blocos do painel. Contadores e rankings saem em paralelo
// (consultas independentes); o ranking de redes considera o mês corrente.
func (uc *DashboardUseCase) Get(ctx context.Context) (*dto.DashboardResponse, error) {
	type countsResult struct {
		cells, receipts, products int
		err                       error
	}
	type recentResult struct {
		rows []*entity.Receipt
		err  error
	}
	type networksResult struct {
		rows []repository.NetworkRanking
		err  error
	}
	type cellsResult struct {
		rows []repository.CellRanking
		err  error
	}

	countsChan := make(chan countsResult, 1)
	recentChan := make(chan recentResult, 1)
	networksChan := make(chan networksResult, 1)
	cellsChan := make(chan cellsResult, 1)

	go func() {
		var res countsResult
		res.cells, res.err = uc.repo.CountActiveCells(ctx)
		if res.err == nil {
			res.receipts, res.err = uc.repo.CountReceipts(ctx)
		}
		if res.err == nil {
			res.products, res.err = uc.repo.CountActiveProducts(ctx)
		}
		countsChan <- res
	}()
	go func() {
		rows, err := uc.repo.RecentReceipts(ctx, recentReceiptsLimit)
		recentChan <- recentResult{rows, err}
	}()
	go func() {
		monthStart := startOfMonth(time.Now())
		rows, err := uc.repo.NetworkRankings(ctx, &monthStart)
		networksChan <- networksResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.CellRankings(ctx, topCellsLimit)
		cellsChan <- cellsResult{rows, err}
	}()

	counts := <-countsChan
	recent := <-recentChan
	networks := <-networksChan
	cells := <-cellsChan

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: contadores: %w", counts.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: recebimentos recentes: %w", recent.err)
	}
	if networks.err != nil {
		return nil, fmt.Errorf("dashboard: ranking de redes: %w", networks.err)
	}
	if cells.err != nil {
		return nil, fmt.Errorf("dashboard: ranking de células: %w", cells.err)
	}

	resp := &dto.DashboardResponse{
		ActiveCells:    counts.cells,
		PostedReceipts: counts.receipts,
		ActiveProducts: counts.products,
	}
	for _, r := range recent.rows {
		resp.RecentReceipts = append(resp.RecentReceipts, *toReceiptResponse(r))
	}
	for _, n := range networks.rows {
		resp.NetworkRankings = append(resp.NetworkRankings, dto.NetworkRankingResponse{
			NetworkID: n.NetworkID,
			Color:     n.Color,
			Hex:       n.Hex,
			TotalKG:   n.TotalKG,
			CellCount: n.CellCount,
		})
	}
	for _, c := range cells.rows {
		resp.TopCells = append(resp.TopCells, dto.CellRankingResponse{
			CellID:  c.CellID,
			Name:    c.Name,
			Leader:  c.Leader,
			Color:   c.Color,
			TotalKG: c.TotalKG,
		})
	}
	return resp, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
