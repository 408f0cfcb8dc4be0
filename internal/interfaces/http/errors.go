package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// statusFor mapea códigos de error de negocio a status HTTP.
// Conflictos de estado o de stock son 409; referencias inexistentes, 404;
// entrada inválida, 400. Un código desconocido es fallo de infraestructura: 500.
func statusFor(code string) int {
	switch code {
	case domain.CodeInsufficientStock,
		domain.CodeConcurrencyConflict,
		domain.CodeInvalidStatus,
		domain.CodeNoStock,
		domain.CodeDuplicate:
		return fiber.StatusConflict
	case domain.CodeItemNotFound,
		domain.CodeWarehouseNotFound,
		domain.CodeLocationNotFound,
		domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeInvalidQuantity,
		domain.CodeInvalidUnreserve,
		domain.CodeSelfTransferNotAllowed,
		domain.CodeEmptyTransfer,
		domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError traduce un error de caso de uso a la respuesta HTTP.
func respondError(c *fiber.Ctx, err error) error {
	code := domain.CodeOf(err)
	if code == "" {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	message := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	return c.Status(statusFor(code)).JSON(dto.ErrorResponse{Code: code, Message: message})
}
