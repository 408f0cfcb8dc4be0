package dto

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// PageRequest paginación para listados.
type PageRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// DefaultPage aplica valores por defecto si Page/PageSize son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

// PagedResponse listado paginado genérico.
type PagedResponse[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// NewPagedResponse construye la página con sus metadatos.
func NewPagedResponse[T any](items []T, page, pageSize, total int) PagedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResponse[T]{Items: items, Page: page, PageSize: pageSize, Total: total}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BalanceSnapshot foto del saldo después de una operación. Available siempre
// se recalcula, nunca se persiste.
type BalanceSnapshot struct {
	OnHand    decimal.Decimal `json:"on_hand"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	InTransit decimal.Decimal `json:"in_transit"`
}

// OperationResult resultado de una mutación de inventario: id del movimiento
// creado + saldo resultante.
type OperationResult struct {
	MovementID string          `json:"movement_id"`
	Balance    BalanceSnapshot `json:"balance"`
}

// SnapshotOf toma la foto de un saldo, recalculando available.
func SnapshotOf(b *entity.Balance) BalanceSnapshot {
	return BalanceSnapshot{
		OnHand:    b.OnHand,
		Reserved:  b.Reserved,
		Available: b.Available(),
		InTransit: b.InTransit,
	}
}
