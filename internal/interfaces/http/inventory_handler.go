package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// InventoryHandler maneja entradas, salidas, ajustes y lecturas del ledger (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Receipt godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia"
// @Param        body  body  dto.ReceiptRequest  true  "item_id, warehouse_id, quantity, unit_cost opcional"
// @Success      201   {object}  dto.OperationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Receipt(c.Context(), GetTenantID(c), GetActor(c), in, GetIdempotencyKey(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Issue godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia"
// @Param        body  body  dto.IssueRequest  true  "item_id, warehouse_id, quantity"
// @Success      201   {object}  dto.OperationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/issues [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Issue(c.Context(), GetTenantID(c), GetActor(c), in, GetIdempotencyKey(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Adjust godoc
// @Summary      Registrar ajuste de stock con motivo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia"
// @Param        body  body  dto.AdjustmentRequest  true  "adjustment_type: increase | decrease"
// @Success      201   {object}  dto.OperationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Adjust(c.Context(), GetTenantID(c), GetActor(c), in, GetIdempotencyKey(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Balances godoc
// @Summary      Listar saldos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "filtrar por ítem"
// @Param        warehouse_id  query  string  false  "filtrar por bodega"
// @Param        page          query  int     false  "página (desde 1)"
// @Param        page_size     query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.PagedResponse[dto.BalanceDTO]
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) Balances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()
	filter := repository.BalanceFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		Page:        page.Page,
		PageSize:    page.PageSize,
	}
	result, err := h.uc.Balances(c.Context(), GetTenantID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Movements godoc
// @Summary      Consultar el ledger de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "filtrar por ítem"
// @Param        warehouse_id  query  string  false  "filtrar por bodega"
// @Param        kind          query  string  false  "tipo de movimiento"
// @Param        from          query  string  false  "desde (RFC3339, fecha de negocio)"
// @Param        to            query  string  false  "hasta (RFC3339, fecha de negocio)"
// @Param        page          query  int     false  "página (desde 1)"
// @Param        page_size     query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.PagedResponse[dto.MovementDTO]
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		Kind:        c.Query("kind"),
		Page:        page.Page,
		PageSize:    page.PageSize,
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	result, err := h.uc.Movements(c.Context(), GetTenantID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
