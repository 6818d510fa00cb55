package dto

import "github.com/shopspring/decimal"

// NetworkRankingResponse posição de uma rede no ranking de kg doados.
type NetworkRankingResponse struct {
	NetworkID int64           `json:"rede_id"`
	Color     string          `json:"cor"`
	Hex       string          `json:"hex"`
	TotalKG   decimal.Decimal `json:"total_kg"`
	CellCount int             `json:"celulas"`
}

// CellRankingResponse posição de uma célula no ranking de kg doados.
type CellRankingResponse struct {
	CellID  int64           `json:"celula_id"`
	Name    string          `json:"nome"`
	Leader  string          `json:"lider"`
	Color   string          `json:"cor"`
	TotalKG decimal.Decimal `json:"total_kg"`
}

// DashboardResponse agregados do painel inicial.
type DashboardResponse struct {
	ActiveCells     int                      `json:"celulas_ativas"`
	PostedReceipts  int                      `json:"recebimentos"`
	ActiveProducts  int                      `json:"produtos_ativos"`
	RecentReceipts  []ReceiptResponse        `json:"recebimentos_recentes"`
	NetworkRankings []NetworkRankingResponse `json:"ranking_redes"`
	TopCells        []CellRankingResponse    `json:"ranking_celulas"`
}
