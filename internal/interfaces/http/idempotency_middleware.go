package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/idempotency"
)

// HeaderIdempotencyKey header que activa el guard en mutaciones.
const HeaderIdempotencyKey = "Idempotency-Key"

// LocalIdempotencyKey local con la clave del request, para que los handlers
// la asienten en el movimiento.
const LocalIdempotencyKey = "idempotency_key"

// IdempotencyMiddleware devuelve la respuesta cacheada cuando la clave ya fue
// usada, y tras una mutación 2xx guarda la respuesta para replays futuros.
// Requests sin el header pasan de largo; GETs también (son idempotentes solos).
func IdempotencyMiddleware(guard *idempotency.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		tenantID := GetTenantID(c)
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		}

		record, err := guard.Before(c.Context(), tenantID, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		if record != nil {
			// Replay: misma respuesta, byte a byte, sin re-ejecutar.
			if record.RequestHash != idempotency.HashBody(c.Body()) {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code:    "IDEMPOTENCY_MISMATCH",
					Message: "la clave de idempotencia ya fue usada con otro cuerpo",
				})
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(record.StatusCode).SendString(record.ResponseBody)
		}

		c.Locals(LocalIdempotencyKey, key)
		// requestBody se copia antes de Next: fasthttp recicla el buffer.
		requestBody := append([]byte(nil), c.Body()...)
		if err := c.Next(); err != nil {
			return err
		}
		guard.After(c.Context(), tenantID, key, requestBody, c.Response().StatusCode(), c.Response().Body())
		return nil
	}
}

// GetIdempotencyKey devuelve la clave del request, o vacío si no trae.
func GetIdempotencyKey(c *fiber.Ctx) string {
	return localString(c, LocalIdempotencyKey)
}
