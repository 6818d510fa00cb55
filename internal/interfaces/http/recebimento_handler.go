package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/validator"
)

// ReceiptHandler trata as requisições HTTP de recebimentos (protegido).
type ReceiptHandler struct {
	uc *usecase.ReceiptUseCase
}

// NewReceiptHandler constrói o handler.
func NewReceiptHandler(uc *usecase.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar recebimento de doações
// @Description  Grava o recebimento e lança as entradas no estoque. Resposta
// @Description  201 quando todas as linhas entram; 207 quando parte entra e
// @Description  parte falha (o corpo detalha cada linha); 409 em transação
// @Description  duplicada.
// @Tags         recebimentos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "Itens do recebimento"
// @Success      201   {object}  dto.CreateReceiptResponse
// @Success      207   {object}  dto.CreateReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/recebimentos [post]
func (h *ReceiptHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		if errors.Is(err, ledger.ErrPartialFailure) && out != nil {
			return c.Status(fiber.StatusMultiStatus).JSON(out)
		}
		return postingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Buscar recebimento por ID
// @Tags         recebimentos
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID do recebimento"
// @Success      200  {object}  dto.ReceiptResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recebimentos/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recebimento não encontrado"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recebimentos
// @Tags         recebimentos
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Limite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.ReceiptListResponse
// @Router       /api/recebimentos [get]
func (h *ReceiptHandler) List(c *fiber.Ctx) error {
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
