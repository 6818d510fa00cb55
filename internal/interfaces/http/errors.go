package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/application/dto"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain"
	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/ledger"
)

// postingError mapeia os erros do motor do ledger (e das barreiras de
// idempotência) para respostas HTTP. Cada causa tem um código próprio: o
// front precisa distinguir duplicata, saldo insuficiente e conflito de
// concorrência para orientar o voluntário.
func postingError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrEmptyTransaction), errors.Is(err, ledger.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, ledger.ErrUnknownKey):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_KEY", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, ledger.ErrDuplicateTransaction):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_TRANSACTION", Message: "transação já lançada"})
	case errors.Is(err, ledger.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, ledger.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY", Message: "conflito de concorrência, tente novamente"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
