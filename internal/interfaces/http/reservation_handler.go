package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/reservation"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// ReservationHandler maneja el ciclo de vida de reservas (protegido).
type ReservationHandler struct {
	uc *reservation.UseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *reservation.UseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear reserva de stock
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia"
// @Param        body  body  dto.CreateReservationRequest  true  "item_id, warehouse_id, quantity, order_type, order_id"
// @Success      201   {object}  dto.ReservationResult
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Create(c.Context(), GetTenantID(c), GetActor(c), in, GetIdempotencyKey(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Confirm godoc
// @Summary      Confirmar reserva (consume el stock reservado)
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la reserva"
// @Success      200  {object}  dto.ReservationResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	result, err := h.uc.Confirm(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Release godoc
// @Summary      Liberar reserva sin retirar stock
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la reserva"
// @Success      200  {object}  dto.ReservationResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	result, err := h.uc.Release(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Cancel godoc
// @Summary      Cancelar reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la reserva"
// @Success      200  {object}  dto.ReservationResult
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	result, err := h.uc.Cancel(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetByID godoc
// @Summary      Consultar reserva
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la reserva"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// List godoc
// @Summary      Listar reservas
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "filtrar por ítem"
// @Param        warehouse_id  query  string  false  "filtrar por bodega"
// @Param        status        query  string  false  "ACTIVE | CONFIRMED | RELEASED | CANCELLED"
// @Param        page          query  int     false  "página (desde 1)"
// @Param        page_size     query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.PagedResponse[dto.ReservationDTO]
// @Router       /api/reservations [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()
	filter := repository.ReservationFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Page:        page.Page,
		PageSize:    page.PageSize,
	}
	result, err := h.uc.List(c.Context(), GetTenantID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
