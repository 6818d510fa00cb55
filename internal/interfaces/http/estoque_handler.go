package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// StockHandler trata as requisições HTTP de estoque (protegido).
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler constrói o handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// List godoc
// @Summary      Listar saldos de estoque
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockBalanceResponse
// @Router       /api/estoque [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Saldo de um produto
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        produtoId  path  int  true  "ID do produto"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/estoque/{produtoId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("produtoId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.GetByProduct(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Extrato de movimentações de um produto
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        produtoId  path   int  true   "ID do produto"
// @Param        limit      query  int  false  "Limite"  default(20)
// @Param        offset     query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.StockMovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/estoque/{produtoId}/movimentos [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	id, err := c.ParamsInt("produtoId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.Movements(c.Context(), int64(id), page)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conferir saldo contra o ledger
// @Description  Compara o saldo materializado com o somatório das
// @Description  movimentações. repair=true sobrescreve o saldo divergente.
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        produtoId  path   int   true   "ID do produto"
// @Param        repair     query  bool  false  "Reparar saldo divergente"  default(false)
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/estoque/{produtoId}/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("produtoId")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.Reconcile(c.Context(), int64(id), c.QueryBool("repair", false))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "produto não encontrado"})
		}
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "conflito de concorrência, tente novamente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
