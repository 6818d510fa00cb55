package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/usecase"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/validator"
)

// NetworkHandler trata as requisições HTTP de redes (protegido).
type NetworkHandler struct {
	uc *usecase.NetworkUseCase
}

// NewNetworkHandler constrói o handler.
func NewNetworkHandler(uc *usecase.NetworkUseCase) *NetworkHandler {
	return &NetworkHandler{uc: uc}
}

// Create godoc
// @Summary      Criar rede
// @Tags         redes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateNetworkRequest  true  "Dados da rede"
// @Success      201   {object}  dto.NetworkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/redes [post]
func (h *NetworkHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateNetworkRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "já existe rede com essa cor"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar redes
// @Tags         redes
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NetworkResponse
// @Router       /api/redes [get]
func (h *NetworkHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Buscar rede por ID
// @Tags         redes
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID da rede"
// @Success      200  {object}  dto.NetworkResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/redes/{id} [get]
func (h *NetworkHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	out, err := h.uc.GetByID(c.Context(), int64(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "rede não encontrada"})
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Atualizar rede
// @Tags         redes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                       true  "ID da rede"
// @Param        body  body  dto.UpdateNetworkRequest  true  "Campos a atualizar"
// @Success      200   {object}  dto.NetworkResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/redes/{id} [put]
func (h *NetworkHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	var in dto.UpdateNetworkRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if errs := validator.Struct(in); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Message(errs)})
	}
	out, err := h.uc.Update(c.Context(), int64(id), in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "já existe rede com essa cor"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "rede não encontrada"})
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desativar rede
// @Tags         redes
// @Security     Bearer
// @Param        id  path  int  true  "ID da rede"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/redes/{id} [delete]
func (h *NetworkHandler) Deactivate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	if err := h.uc.Deactivate(c.Context(), int64(id)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "rede não encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
