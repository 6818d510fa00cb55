package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/repository"
)

// WithdrawalUseCase registra retiradas de estoque. Mesmo ciclo do
// recebimento, com o motor em modo saída: nenhuma linha pode deixar o saldo
// do produto negativo, e a suficiência é conferida por produto somando as
// linhas da própria retirada.
type WithdrawalUseCase struct {
	repo   repository.WithdrawalRepository
	engine *ledger.Engine[int64]
	log    zerolog.Logger
}

// NewWithdrawalUseCase constrói o caso de uso.
func NewWithdrawalUseCase(repo repository.WithdrawalRepository, engine *ledger.Engine[int64], log zerolog.Logger) *WithdrawalUseCase {
	return &WithdrawalUseCase{repo: repo, engine: engine, log: log}
}

// Create grava a retirada e lança as saídas no estoque. Mesmos desfechos do
// recebimento: posted, void (nada saiu) ou posted+ErrPartialFailure.
func (uc *WithdrawalUseCase) Create(ctx context.Context, in dto.CreateWithdrawalRequest) (*dto.CreateWithdrawalResponse, error) {
	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	withdrawal := &entity.Withdrawal{
		TransactionID: transactionID,
		Responsible:   in.Responsible,
		Sector:        in.Sector,
		Notes:         in.Notes,
		Status:        entity.StatusDraft,
		CreatedAt:     time.Now(),
	}
	for _, item := range in.Items {
		withdrawal.Items = append(withdrawal.Items, entity.WithdrawalItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
		})
	}
	if err := uc.repo.Create(ctx, withdrawal); err != nil {
		return nil, err
	}

	lines := make([]ledger.Line[int64], 0, len(withdrawal.Items))
	for _, item := range withdrawal.Items {
		lines = append(lines, ledger.Line[int64]{
			Key:      item.ProductID,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}
	result, postErr := uc.engine.PostOutbound(ctx, transactionID, lines)
	if postErr != nil && !errors.Is(postErr, ledger.ErrPartialFailure) {
		if err := uc.repo.UpdateStatus(ctx, withdrawal.ID, entity.StatusVoid); err != nil {
			uc.log.Error().Int64("withdrawal_id", withdrawal.ID).Err(err).Msg("falha ao anular retirada")
		}
		return nil, postErr
	}

	withdrawal.Status = entity.StatusPosted
	if err := uc.repo.UpdateStatus(ctx, withdrawal.ID, entity.StatusPosted); err != nil {
		return nil, err
	}

	resp := &dto.CreateWithdrawalResponse{
		Withdrawal: *toWithdrawalResponse(withdrawal),
		Posting:    toPostingResponse(result),
	}
	return resp, postErr
}

// GetByID busca uma retirada com itens.
func (uc *WithdrawalUseCase) GetByID(ctx context.Context, id int64) (*dto.WithdrawalResponse, error) {
	withdrawal, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, nil
	}
	return toWithdrawalResponse(withdrawal), nil
}

// List lista retiradas paginadas, mais recentes primeiro.
func (uc *WithdrawalUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.WithdrawalListResponse, error) {
	page.DefaultPage()
	withdrawals, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		items = append(items, *toWithdrawalResponse(w))
	}
	return &dto.WithdrawalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toWithdrawalResponse(w *entity.Withdrawal) *dto.WithdrawalResponse {
	if w == nil {
		return nil
	}
	items := make([]dto.WithdrawalItemResponse, 0, len(w.Items))
	for _, item := range w.Items {
		items = append(items, dto.WithdrawalItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Product:   toProductResponse(item.Product),
		})
	}
	return &dto.WithdrawalResponse{
		ID:            w.ID,
		TransactionID: w.TransactionID,
		Responsible:   w.Responsible,
		Sector:        w.Sector,
		Notes:         w.Notes,
		Status:        w.Status,
		CreatedAt:     w.CreatedAt,
		Items:         items,
	}
}
