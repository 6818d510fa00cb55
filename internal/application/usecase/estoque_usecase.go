package usecase

import (
	"context"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

// StockUseCase consultas de estoque e reconciliação sob demanda.
type StockUseCase struct {
	readRepo    repository.StockReadRepository
	productRepo repository.ProductRepository
	engine      *ledger.Engine[int64]
}

// NewStockUseCase constrói o caso de uso.
func NewStockUseCase(readRepo repository.StockReadRepository, productRepo repository.ProductRepository, engine *ledger.Engine[int64]) *StockUseCase {
	return &StockUseCase{readRepo: readRepo, productRepo: productRepo, engine: engine}
}

// List lista os saldos correntes com produto e categoria.
func (uc *StockUseCase) List(ctx context.Context) ([]dto.StockBalanceResponse, error) {
	balances, err := uc.readRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, toStockBalanceResponse(b))
	}
	return out, nil
}

// GetByProduct devolve o saldo de um produto. ErrNotFound quando o produto
// não existe; produto sem movimentação devolve saldo zero.
func (uc *StockUseCase) GetByProduct(ctx context.Context, productID int64) (*dto.StockBalanceResponse, error) {
	exists, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	balance, err := uc.readRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		resp := dto.StockBalanceResponse{ProductID: productID}
		return &resp, nil
	}
	resp := toStockBalanceResponse(balance)
	return &resp, nil
}

// Movements devolve o extrato do ledger de um produto.
func (uc *StockUseCase) Movements(ctx context.Context, productID int64, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	exists, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	movements, err := uc.readRepo.ListMovements(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, dto.StockMovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			Quantity:      m.Quantity,
			Type:          m.Type,
			TransactionID: m.SourceTransactionID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Reconcile confere o saldo de um produto contra o somatório do ledger.
// repair=true sobrescreve o saldo quando há desvio.
func (uc *StockUseCase) Reconcile(ctx context.Context, productID int64, repair bool) (*dto.ReconcileResponse, error) {
	exists, err := uc.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	result, err := uc.engine.Reconcile(ctx, productID, repair)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		ProductID:     productID,
		LedgerSum:     result.LedgerSum,
		CachedBalance: result.CachedBalance,
		Drift:         result.Drift,
		Repaired:      result.Repaired,
	}, nil
}

func toStockBalanceResponse(b *entity.StockBalance) dto.StockBalanceResponse {
	return dto.StockBalanceResponse{
		ProductID: b.ProductID,
		Quantity:  b.Quantity,
		UpdatedAt: b.UpdatedAt,
		Product:   toProductResponse(b.Product),
	}
}
