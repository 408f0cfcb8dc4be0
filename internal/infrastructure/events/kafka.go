package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

var _ engine.Publisher = (*KafkaPublisher)(nil)

// movementEvent payload del evento publicado por cada movimiento aplicado.
type movementEvent struct {
	MovementID      string          `json:"movement_id"`
	TenantID        string          `json:"tenant_id"`
	ItemID          string          `json:"item_id"`
	WarehouseID     string          `json:"warehouse_id"`
	LocationID      *string         `json:"location_id,omitempty"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

// KafkaPublisher publica movimientos aplicados en un tópico Kafka, después
// del commit y a título best-effort: un fallo se loggea y no afecta la
// operación ya persistida.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewKafkaPublisher construye el publicador para los brokers y tópico dados.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		WriteTimeout: 5 * time.Second,
	}
	return &KafkaPublisher{writer: writer, log: log}
}

// MovementApplied publica el evento del movimiento. La clave de partición es
// tenant+ítem, así los eventos de una misma clave de saldo quedan ordenados.
func (p *KafkaPublisher) MovementApplied(ctx context.Context, m *entity.Movement) {
	if m == nil {
		return
	}
	payload, err := json.Marshal(movementEvent{
		MovementID:      m.ID,
		TenantID:        m.TenantID,
		ItemID:          m.ItemID,
		WarehouseID:     m.WarehouseID,
		LocationID:      m.LocationID,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		TransactionDate: m.TransactionDate,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	})
	if err != nil {
		p.log.Error().Err(err).Msg("serializar evento de movimiento")
		return
	}
	msg := kafka.Message{
		Key:   []byte(m.TenantID + ":" + m.ItemID),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn().Err(err).Str("movement_id", m.ID).Msg("no se pudo publicar el evento de movimiento")
	}
}

// Close cierra el writer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
