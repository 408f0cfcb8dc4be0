package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Códigos de error estables que el core expone a sus consumidores.
const (
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	CodeInvalidStatus          = "INVALID_STATUS"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeInvalidUnreserve       = "INVALID_UNRESERVE"
	CodeItemNotFound           = "ITEM_NOT_FOUND"
	CodeWarehouseNotFound      = "WAREHOUSE_NOT_FOUND"
	CodeLocationNotFound       = "LOCATION_NOT_FOUND"
	CodeSelfTransferNotAllowed = "SELF_TRANSFER_NOT_ALLOWED"
	CodeEmptyTransfer          = "EMPTY_TRANSFER"
	CodeNoStock                = "NO_STOCK"
	CodeNotFound               = "NOT_FOUND"
	CodeDuplicate              = "DUPLICATE"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeValidation             = "VALIDATION"
)

// Error error de negocio con código estable legible por máquina.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is compara por código, de modo que errors.Is matchee contra los centinelas
// aunque el mensaje sea distinto.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError construye un error de negocio con código y mensaje.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Centinelas de dominio.
var (
	ErrConcurrencyConflict = &Error{Code: CodeConcurrencyConflict, Message: "conflicto de concurrencia, reintente la operación"}
	ErrInvalidQuantity     = &Error{Code: CodeInvalidQuantity, Message: "la cantidad debe ser positiva"}
	ErrInvalidUnreserve    = &Error{Code: CodeInvalidUnreserve, Message: "no se puede liberar más de lo reservado"}
	ErrInvalidStatus       = &Error{Code: CodeInvalidStatus, Message: "transición de estado inválida"}
	ErrItemNotFound        = &Error{Code: CodeItemNotFound, Message: "ítem no encontrado"}
	ErrWarehouseNotFound   = &Error{Code: CodeWarehouseNotFound, Message: "bodega no encontrada"}
	ErrLocationNotFound    = &Error{Code: CodeLocationNotFound, Message: "ubicación no encontrada"}
	ErrSelfTransfer        = &Error{Code: CodeSelfTransferNotAllowed, Message: "bodega origen y destino deben ser distintas"}
	ErrEmptyTransfer       = &Error{Code: CodeEmptyTransfer, Message: "el traslado debe tener al menos una línea"}
	ErrNoStock             = &Error{Code: CodeNoStock, Message: "no existe stock para esa combinación ítem/bodega"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "recurso no encontrado"}
	ErrDuplicate           = &Error{Code: CodeDuplicate, Message: "recurso duplicado"}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized, Message: "no autorizado"}
	ErrInvalidInput        = &Error{Code: CodeValidation, Message: "entrada inválida"}
)

// InvalidStatusf construye un INVALID_STATUS con el detalle de la transición rechazada.
func InvalidStatusf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidStatus, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError INSUFFICIENT_STOCK con lo solicitado y lo disponible al momento del rechazo.
type InsufficientStockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: solicitado %s, disponible %s (ítem %s)",
		CodeInsufficientStock, e.Requested.String(), e.Available.String(), e.ItemID)
}

// Is permite errors.Is contra cualquier InsufficientStockError.
func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// NewInsufficientStock construye el error con el detalle de disponibilidad.
func NewInsufficientStock(itemID string, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{ItemID: itemID, Requested: requested, Available: available}
}

// CodeOf devuelve el código estable de un error de negocio (aun si viene
// envuelto con %w), o cadena vacía si es un fallo de infraestructura.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return CodeInsufficientStock
	}
	return ""
}
