package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/validator"
)

// CellHandler trata as requisições HTTP de células (protegido).
type CellHandler struct {
	uc *usecase.CellUseCase
}

// NewCellHandler constrói o handler.
func NewCellHandler(uc *usecase.CellUseCase) *CellHandler {
	return &CellHandler{uc: uc}
}

// Create godoc
// @Summary      Criar célula
// @Tags         celulas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCellRequest  true  "Dados da célula"
// @Success      201   {object}  dto.CellResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/celulas [post]
func (h *CellHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCellRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NETWORK_NOT_FOUND", Message: "rede não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar células
// @Tags         celulas
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CellResponse
// @Router       /api/celulas [get]
func (h *CellHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Buscar célula por ID
// @Tags         celulas
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da célula"
// @Success      200  {object}  dto.CellResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/celulas/{id} [get]
func (h *CellHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "célula não encontrada"})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Atualizar célula
// @Tags         celulas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "ID da célula"
// @Param        body  body  dto.UpdateCellRequest  true  "Campos a atualizar"
// @Success      200   {object}  dto.CellResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/celulas/{id} [put]
func (h *CellHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.UpdateCellRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Update(c.Context(), int64(id), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NETWORK_NOT_FOUND", Message: "rede não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "célula não encontrada"})
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desativar célula
// @Tags         celulas
// @Security     Bearer
// @Param        id  path  int  true  "ID da célula"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/celulas/{id} [delete]
func (h *CellHandler) Deactivate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	if err := h.uc.Deactivate(c.Context(), int64(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "célula não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RegisterDonation godoc
// @Summary      Registrar doação de kg da célula
// @Tags         celulas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                          true  "ID da célula"
// @Param        body  body  dto.RegisterDonationRequest  true  "quantidade_kg, data_chegada opcional"
// @Success      201   {object}  dto.DonationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/celulas/{id}/recebimento [post]
func (h *CellHandler) RegisterDonation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.RegisterDonationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.RegisterDonation(c.Context(), int64(id), in)
	if err != nil {
		return postingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Reconcile godoc
// @Summary      Conferir total de kg contra o extrato
// @Description  Compara o total registrado na célula com o somatório do
// @Description  historico_kg. repair=true sobrescreve o total divergente.
// @Tags         celulas
// @Security     Bearer
// @Produce      json
// @Param        id      path   int   true   "ID da célula"
// @Param        repair  query  bool  false  "Reparar total divergente"  default(false)
// @Success      200  {object}  dto.CellReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/celulas/{id}/reconcile [post]
func (h *CellHandler) Reconcile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.Reconcile(c.Context(), int64(id), c.QueryBool("repair", false))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "célula não encontrada"})
		}
		if errors.Is(err, ledger.ErrConcurrentModification) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "conflito de concorrência, tente novamente"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Extrato de doações da célula
// @Tags         celulas
// @Security     Bearer
// @Produce      json
// @Param        id      path   int  true   "ID da célula"
// @Param        limit   query  int  false  "Limite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.KGHistoryListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/celulas/{id}/historico [get]
func (h *CellHandler) History(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	page := dto.PageRequest{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	out, err := h.uc.History(c.Context(), int64(id), page)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "célula não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
