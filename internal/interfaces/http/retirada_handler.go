package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/validator"
)

// WithdrawalHandler trata as requisições HTTP de retiradas (protegido).
type WithdrawalHandler struct {
	uc *usecase.WithdrawalUseCase
}

// NewWithdrawalHandler constrói o handler.
func NewWithdrawalHandler(uc *usecase.WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar retirada de estoque
// @Description  Grava a retirada e lança as saídas no estoque. Nenhuma linha
// @Description  pode deixar saldo negativo; 409 quando o saldo não cobre o
// @Description  pedido ou a transação é duplicada; 207 em desfecho parcial.
// @Tags         retiradas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWithdrawalRequest  true  "Itens da retirada"
// @Success      201   {object}  dto.CreateWithdrawalResponse
// @Success      207   {object}  dto.CreateWithdrawalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/retiradas [post]
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, ledger.ErrPartialFailure) && out != nil {
			return c.Status(fiber.StatusMultiStatus).JSON(out)
		}
		return postingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Buscar retirada por ID
// @Tags         retiradas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da retirada"
// @Success      200  {object}  dto.WithdrawalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/retiradas/{id} [get]
func (h *WithdrawalHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "retirada não encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar retiradas
// @Tags         retiradas
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Limite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.WithdrawalListResponse
// @Router       /api/retiradas [get]
func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
