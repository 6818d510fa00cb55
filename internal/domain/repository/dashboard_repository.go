package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
)

// NetworkRanking é uma linha do ranking de redes por kg doado.
type NetworkRanking struct {
	NetworkID int64
	Color     string
	Hex       string
	TotalKG   decimal.Decimal
	CellCount int
}

// CellRanking é uma linha do ranking de células por kg doado.
type CellRanking struct {
	CellID    int64
	Name      string
	Leader    string
	NetworkID int64
	Color     string
	TotalKG   decimal.Decimal
}

// DashboardRepository consultas read-only de agregados para o painel.
type DashboardRepository interface {
	CountActiveCells(ctx context.Context) (int, error)
	CountReceipts(ctx context.Context) (int, error)
	CountActiveProducts(ctx context.Context) (int, error)
	RecentReceipts(ctx context.Context, limit int) ([]*entity.Receipt, error)
	NetworkRankings(ctx context.Context, since *time.Time) ([]NetworkRanking, error)
	CellRankings(ctx context.Context, limit int) ([]CellRanking, error)
}
