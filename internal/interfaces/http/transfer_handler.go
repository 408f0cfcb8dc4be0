package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/transfer"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// TransferHandler maneja traslados multi-línea entre bodegas (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado en borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "bodegas origen/destino y líneas"
// @Success      201   {object}  dto.TransferDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Create(c.Context(), GetTenantID(c), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Commit godoc
// @Summary      Comprometer traslado (reserva el stock en origen)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del traslado"
// @Success      200  {object}  dto.TransferDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/commit [post]
func (h *TransferHandler) Commit(c *fiber.Ctx) error {
	result, err := h.uc.Commit(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Ship godoc
// @Summary      Despachar traslado (saca del origen, deja en tránsito)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del traslado"
// @Param        body  body  dto.ShipTransferRequest  true  "cantidades despachadas por línea"
// @Success      200   {object}  dto.TransferDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	var in dto.ShipTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Ship(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Receive godoc
// @Summary      Recibir traslado (ingresa al destino)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  true  "cantidades recibidas por línea"
// @Success      200   {object}  dto.TransferDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Receive(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del traslado"
// @Success      200  {object}  dto.TransferDTO
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	result, err := h.uc.Cancel(c.Context(), GetTenantID(c), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetByID godoc
// @Summary      Consultar traslado con sus líneas
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del traslado"
// @Success      200  {object}  dto.TransferDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status                    query  string  false  "DRAFT | COMMITTED | IN_TRANSIT | RECEIVED | CANCELLED"
// @Param        source_warehouse_id       query  string  false  "filtrar por bodega origen"
// @Param        destination_warehouse_id  query  string  false  "filtrar por bodega destino"
// @Param        page                      query  int     false  "página (desde 1)"
// @Param        page_size                 query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.PagedResponse[dto.TransferDTO]
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	page.DefaultPage()
	filter := repository.TransferFilter{
		Status:                 c.Query("status"),
		SourceWarehouseID:      c.Query("source_warehouse_id"),
		DestinationWarehouseID: c.Query("destination_warehouse_id"),
		Page:                   page.Page,
		PageSize:               page.PageSize,
	}
	result, err := h.uc.List(c.Context(), GetTenantID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
