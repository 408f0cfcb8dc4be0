package entity

import "time"

// IdempotencyRecord resultado cacheado de una mutación exitosa, indexado por
// (tenant, clave provista por el cliente). Vence a las ExpiresAt; un registro
// vencido se trata como ausente y la clave vuelve a ser utilizable.
type IdempotencyRecord struct {
	ID       string
	TenantID string
	Key      string

	RequestHash  string // SHA-256 hex del cuerpo original
	StatusCode   int
	ResponseBody string // respuesta serializada, se devuelve verbatim en replay

	CreatedAt time.Time
	ExpiresAt time.Time
}
