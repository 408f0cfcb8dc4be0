package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/catalog"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
)

// CatalogHandler maneja los datos maestros mínimos (protegido).
type CatalogHandler struct {
	uc *catalog.UseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.UseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// CreateItem godoc
// @Summary      Crear ítem
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "sku, name"
// @Success      201   {object}  dto.ItemResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.CreateItem(c.Context(), GetTenantID(c), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// ListItems godoc
// @Summary      Listar ítems
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        page       query  int  false  "página (desde 1)"
// @Param        page_size  query  int  false  "tamaño de página (máx 100)"
// @Success      200  {array}  dto.ItemResponse
// @Router       /api/items [get]
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	items, err := h.uc.ListItems(c.Context(), GetTenantID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// CreateWarehouse godoc
// @Summary      Crear bodega
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWarehouseRequest  true  "code, name"
// @Success      201   {object}  dto.WarehouseResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/warehouses [post]
func (h *CatalogHandler) CreateWarehouse(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	wh, err := h.uc.CreateWarehouse(c.Context(), GetTenantID(c), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(wh)
}

// ListWarehouses godoc
// @Summary      Listar bodegas
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        page       query  int  false  "página (desde 1)"
// @Param        page_size  query  int  false  "tamaño de página (máx 100)"
// @Success      200  {array}  dto.WarehouseResponse
// @Router       /api/warehouses [get]
func (h *CatalogHandler) ListWarehouses(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	list, err := h.uc.ListWarehouses(c.Context(), GetTenantID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CreateLocation godoc
// @Summary      Crear ubicación dentro de una bodega
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "warehouse_id, code"
// @Success      201   {object}  dto.LocationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	loc, err := h.uc.CreateLocation(c.Context(), GetTenantID(c), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(loc)
}

// ListLocations godoc
// @Summary      Listar ubicaciones de una bodega
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  true  "bodega"
// @Success      200  {array}   dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations [get]
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouse_id es obligatorio"})
	}
	list, err := h.uc.ListLocations(c.Context(), GetTenantID(c), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
