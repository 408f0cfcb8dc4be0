package entity

import "time"

// Audit campos de auditoría comunes, embebidos en las entidades de negocio.
// El tenant NO va aquí: se pasa explícito en cada operación de repositorio.
type Audit struct {
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
}
