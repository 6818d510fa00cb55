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

// ReceiptUseCase registra recebimentos de doações e lança o efeito no
// estoque. A sequência é sempre: gravar cabeçalho+itens (barreira de
// idempotência pelo transaction_id), lançar as linhas no ledger e então
// promover o status. Linhas que falham no lançamento não derrubam as que
// entraram; o resultado reporta cada desfecho.
type ReceiptUseCase struct {
	repo   repository.ReceiptRepository
	engine *ledger.Engine[int64]
	log    zerolog.Logger
}

// NewReceiptUseCase constrói o caso de uso.
func NewReceiptUseCase(repo repository.ReceiptRepository, engine *ledger.Engine[int64], log zerolog.Logger) *ReceiptUseCase {
	return &ReceiptUseCase{repo: repo, engine: engine, log: log}
}

// Create grava o recebimento e lança as linhas no estoque.
//
// Desfechos possíveis:
//   - todas as linhas gravadas: status posted, erro nil;
//   - nenhuma linha gravada: status void, erro com a causa;
//   - parte gravada: status posted, resposta completa + ErrPartialFailure
//     para o chamador distinguir (as linhas gravadas não são desfeitas).
func (uc *ReceiptUseCase) Create(ctx context.Context, userID int64, in dto.CreateReceiptRequest) (*dto.CreateReceiptResponse, error) {
	transactionID := in.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	receipt := &entity.Receipt{
		TransactionID: transactionID,
		Notes:         in.Notes,
		Status:        entity.StatusDraft,
		CreatedBy:     userID,
		CreatedAt:     time.Now(),
	}
	for _, item := range in.Items {
		priority := item.Priority
		if priority == "" {
			priority = entity.PriorityNormal
		}
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			ExpiresAt: item.ExpiresAt,
			Priority:  priority,
			Barcode:   item.Barcode,
			LotCode:   item.LotCode,
		})
	}
	if err := uc.repo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	lines := make([]ledger.Line[int64], 0, len(receipt.Items))
	for _, item := range receipt.Items {
		lines = append(lines, ledger.Line[int64]{
			Key:      item.ProductID,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}
	result, postErr := uc.engine.PostInbound(ctx, transactionID, lines)
	if postErr != nil && !errors.Is(postErr, ledger.ErrPartialFailure) {
		// Nada entrou no estoque: o recebimento vira void e fica como
		// registro da tentativa.
		if err := uc.repo.UpdateStatus(ctx, receipt.ID, entity.StatusVoid); err != nil {
			uc.log.Error().Int64("receipt_id", receipt.ID).Err(err).Msg("falha ao anular recebimento")
		}
		return nil, postErr
	}

	receipt.Status = entity.StatusPosted
	if err := uc.repo.UpdateStatus(ctx, receipt.ID, entity.StatusPosted); err != nil {
		return nil, err
	}

	resp := &dto.CreateReceiptResponse{
		Receipt: *toReceiptResponse(receipt),
		Posting: toPostingResponse(result),
	}
	// postErr aqui só pode ser ErrPartialFailure: devolve junto da resposta
	// para o chamador sinalizar o desfecho parcial.
	return resp, postErr
}

// GetByID busca um recebimento com itens.
func (uc *ReceiptUseCase) GetByID(ctx context.Context, id int64) (*dto.ReceiptResponse, error) {
	receipt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	return toReceiptResponse(receipt), nil
}

// List lista recebimentos paginados, mais recentes primeiro.
func (uc *ReceiptUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ReceiptListResponse, error) {
	page.DefaultPage()
	receipts, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		items = append(items, *toReceiptResponse(r))
	}
	return &dto.ReceiptListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	if r == nil {
		return nil
	}
	items := make([]dto.ReceiptItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, dto.ReceiptItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			ExpiresAt: item.ExpiresAt,
			Priority:  item.Priority,
			Barcode:   item.Barcode,
			LotCode:   item.LotCode,
			Product:   toProductResponse(item.Product),
		})
	}
	return &dto.ReceiptResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Notes:         r.Notes,
		Status:        r.Status,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		Items:         items,
	}
}

// toPostingResponse converte o resultado do motor para o DTO de lançamento.
func toPostingResponse(result *ledger.PostResult[int64]) dto.PostingResponse {
	resp := dto.PostingResponse{
		TransactionID: result.TransactionID,
		Status:        "posted",
	}
	if result.Partial() {
		resp.Status = "partial"
	}
	for _, line := range result.Committed {
		resp.Committed = append(resp.Committed, dto.PostingLineResult{
			Index:      line.Index,
			ProductID:  line.Key,
			Quantity:   line.Quantity,
			NewBalance: line.NewBalance,
		})
	}
	for _, line := range result.Failed {
		resp.Failed = append(resp.Failed, dto.PostingLineFailure{
			Index:     line.Index,
			ProductID: line.Key,
			Quantity:  line.Quantity,
			Reason:    line.Reason,
		})
	}
	return resp
}
