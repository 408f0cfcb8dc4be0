package dto

import "time"

// RegisterRequest alta de usuario.
type RegisterRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse usuario en respuestas (nunca incluye el hash).
type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse token + usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// CreateItemRequest alta de ítem (datos maestros mínimos).
type CreateItemRequest struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// ItemResponse ítem en respuestas.
type ItemResponse struct {
	ID        string    `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWarehouseRequest alta de bodega.
type CreateWarehouseRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// WarehouseResponse bodega en respuestas.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateLocationRequest alta de ubicación dentro de una bodega.
type CreateLocationRequest struct {
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
}

// LocationResponse ubicación en respuestas.
type LocationResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
}
