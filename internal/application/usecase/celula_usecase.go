package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

// CellUseCase casos de uso de células: CRUD, registro de doações de kg e
// extrato. O saldo quantidade_kg nunca é escrito diretamente — toda doação
// passa pelo motor do ledger, o mesmo protocolo do estoque.
type CellUseCase struct {
	repo        repository.CellRepository
	networkRepo repository.NetworkRepository
	historyRepo repository.KGHistoryRepository
	engine      *ledger.Engine[int64]
}

// NewCellUseCase constrói o caso de uso.
func NewCellUseCase(
	repo repository.CellRepository,
	networkRepo repository.NetworkRepository,
	historyRepo repository.KGHistoryRepository,
	engine *ledger.Engine[int64],
) *CellUseCase {
	return &CellUseCase{repo: repo, networkRepo: networkRepo, historyRepo: historyRepo, engine: engine}
}

// Create cria uma célula com saldo de kg zerado.
func (uc *CellUseCase) Create(ctx context.Context, in dto.CreateCellRequest) (*dto.CellResponse, error) {
	network, err := uc.networkRepo.GetByID(ctx, in.NetworkID)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, domain.ErrNotFound
	}
	cell := &entity.Cell{
		Name:        in.Name,
		Leader:      in.Leader,
		Supervisors: in.Supervisors,
		Phone:       in.Phone,
		Address:     in.Address,
		NetworkID:   in.NetworkID,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, cell); err != nil {
		return nil, err
	}
	cell.Network = network
	return toCellResponse(cell), nil
}

// GetByID busca uma célula (com rede) por ID.
func (uc *CellUseCase) GetByID(ctx context.Context, id int64) (*dto.CellResponse, error) {
	cell, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, nil
	}
	return toCellResponse(cell), nil
}

// List lista as células ativas com a rede de cada uma.
func (uc *CellUseCase) List(ctx context.Context) ([]dto.CellResponse, error) {
	cells, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CellResponse, 0, len(cells))
	for _, c := range cells {
		out = append(out, *toCellResponse(c))
	}
	return out, nil
}

// Update atualiza os campos informados. O saldo de kg não é tocado aqui.
func (uc *CellUseCase) Update(ctx context.Context, id int64, in dto.UpdateCellRequest) (*dto.CellResponse, error) {
	cell, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, nil
	}
	if in.Name != nil {
		cell.Name = *in.Name
	}
	if in.Leader != nil {
		cell.Leader = *in.Leader
	}
	if in.Supervisors != nil {
		cell.Supervisors = *in.Supervisors
	}
	if in.Phone != nil {
		cell.Phone = *in.Phone
	}
	if in.Address != nil {
		cell.Address = *in.Address
	}
	if in.NetworkID != nil {
		network, err := uc.networkRepo.GetByID(ctx, *in.NetworkID)
		if err != nil {
			return nil, err
		}
		if network == nil {
			return nil, domain.ErrNotFound
		}
		cell.NetworkID = *in.NetworkID
		cell.Network = network
	}
	if err := uc.repo.Update(ctx, cell); err != nil {
		return nil, err
	}
	return toCellResponse(cell), nil
}

// Deactivate desativa uma célula (soft delete). O histórico de kg permanece.
func (uc *CellUseCase) Deactivate(ctx context.Context, id int64) error {
	return uc.repo.Deactivate(ctx, id)
}

// RegisterDonation lança uma doação de kg da célula pelo motor do ledger:
// grava em historico_kg e atualiza quantidade_kg com compare-and-set.
// TransactionID vazio ganha um UUID; repetido é rejeitado como duplicado.
func (uc *CellUseCase) RegisterDonation(ctx context.Context, cellID int64, in dto.RegisterDonationRequest) (*dto.DonationResponse, error) {
	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}
	line := ledger.Line[int64]{
		Key:      cellID,
		Quantity: in.Quantity,
		Unit:     "kg",
	}
	if in.DeliveredAt != nil {
		line.OccurredAt = *in.DeliveredAt
	}
	result, err := uc.engine.PostInbound(ctx, transactionID, []ledger.Line[int64]{line})
	if err != nil {
		return nil, err
	}
	return &dto.DonationResponse{
		TransactionID: transactionID,
		CellID:        cellID,
		Quantity:      in.Quantity,
		NewTotal:      result.Balances[cellID],
	}, nil
}

// Reconcile confere o total de kg da célula contra o somatório do extrato.
// repair=true sobrescreve o total quando há desvio.
func (uc *CellUseCase) Reconcile(ctx context.Context, cellID int64, repair bool) (*dto.CellReconcileResponse, error) {
	exists, err := uc.repo.Exists(ctx, cellID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	result, err := uc.engine.Reconcile(ctx, cellID, repair)
	if err != nil {
		return nil, err
	}
	return &dto.CellReconcileResponse{
		CellID:        cellID,
		LedgerSum:     result.LedgerSum,
		CachedBalance: result.CachedBalance,
		Drift:         result.Drift,
		Repaired:      result.Repaired,
	}, nil
}

// History devolve o extrato de doações da célula, mais recentes primeiro.
func (uc *CellUseCase) History(ctx context.Context, cellID int64, page dto.PageRequest) (*dto.KGHistoryListResponse, error) {
	exists, err := uc.repo.Exists(ctx, cellID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	entries, err := uc.historyRepo.ListByCell(ctx, cellID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.KGHistoryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.KGHistoryResponse{
			ID:            e.ID,
			Quantity:      e.Quantity,
			DeliveredAt:   e.DeliveredAt,
			TransactionID: e.SourceTransactionID,
		})
	}
	return &dto.KGHistoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toCellResponse(c *entity.Cell) *dto.CellResponse {
	if c == nil {
		return nil
	}
	return &dto.CellResponse{
		ID:          c.ID,
		Name:        c.Name,
		Leader:      c.Leader,
		Supervisors: c.Supervisors,
		Phone:       c.Phone,
		Address:     c.Address,
		NetworkID:   c.NetworkID,
		QuantityKG:  c.QuantityKG,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		Network:     toNetworkResponse(c.Network),
	}
}
