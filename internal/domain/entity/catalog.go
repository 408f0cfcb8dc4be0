package entity

// Datos maestros mínimos: lo que el ledger necesita para validar referencias.
// El CRUD completo de catálogo queda fuera del alcance de este servicio.

// Item producto o SKU rastreado por el inventario.
type Item struct {
	ID       string
	TenantID string
	SKU      string
	Name     string
	Audit
}

// Warehouse bodega física.
type Warehouse struct {
	ID       string
	TenantID string
	Code     string
	Name     string
	Audit
}

// Location ubicación dentro de una bodega (pasillo, estante...). Opcional en
// las claves de saldo.
type Location struct {
	ID          string
	TenantID    string
	WarehouseID string
	Code        string
	Audit
}

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// User usuario que opera el inventario; su Name es la identidad de actor en
// los campos de auditoría del ledger.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string
	Audit
}
