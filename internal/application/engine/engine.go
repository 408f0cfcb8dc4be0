package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// DeltaKind operación elemental sobre una fila de saldo. El caller elige la
// dirección con el tipo, nunca con el signo: la cantidad siempre es positiva.
type DeltaKind int

const (
	AddOnHand DeltaKind = iota + 1
	RemoveOnHand
	Reserve
	Unreserve
	AddInTransit
	RemoveInTransit
)

// Mutation una operación elemental con su cantidad.
type Mutation struct {
	Kind     DeltaKind
	Quantity decimal.Decimal
}

// MovementMeta metadatos del asiento que Apply escribe en el ledger.
type MovementMeta struct {
	Kind              string // tipo de movimiento (entity.Movement*)
	UnitCost          *decimal.Decimal
	ReferenceType     string
	ReferenceID       string
	ReasonCode        string
	ReasonDescription string
	LotNumber         string
	SerialNumber      string
	ExpirationDate    *time.Time
	TransactionDate   time.Time // tiempo de negocio; zero = ahora
	CorrelationID     string
	IdempotencyKey    string
	Actor             string
}

// Delta la unidad de trabajo de Apply: una o más mutaciones sobre UNA clave de
// saldo más un asiento en el ledger. Meta nil omite el asiento; solo los
// ajustes de tránsito en destino durante el despacho lo usan (la salida ya
// quedó asentada como TRANSFER_OUT en el origen).
type Delta struct {
	Key       entity.BalanceKey
	Mutations []Mutation
	Meta      *MovementMeta
}

// Single construye el Delta de una sola mutación con asiento: la forma normal.
func Single(key entity.BalanceKey, kind DeltaKind, quantity decimal.Decimal, meta MovementMeta) Delta {
	return Delta{Key: key, Mutations: []Mutation{{Kind: kind, Quantity: quantity}}, Meta: &meta}
}

// Engine motor de saldos: único escritor de filas de saldo y del ledger.
// Lee la fila, la muta en memoria vía los métodos de la entidad y la escribe
// con CAS sobre row_version; el asiento del ledger va en la misma transacción.
type Engine struct {
	allowNegativeStock bool
	maxRetries         int
	backoff            time.Duration
	clock              func() time.Time
	metrics            Metrics
	log                *logger.Logger
}

// Option configura el motor.
type Option func(*Engine)

// WithClock inyecta el reloj (determinismo en tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithMetrics inyecta el registrador de métricas.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithBackoff ajusta la espera base entre reintentos de CAS.
func WithBackoff(d time.Duration) Option {
	return func(e *Engine) { e.backoff = d }
}

// New construye el motor. maxRetries acota los reintentos ante conflicto de
// versión antes de devolver CONCURRENCY_CONFLICT.
func New(allowNegativeStock bool, maxRetries int, log *logger.Logger, opts ...Option) *Engine {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	e := &Engine{
		allowNegativeStock: allowNegativeStock,
		maxRetries:         maxRetries,
		backoff:            25 * time.Millisecond,
		clock:              time.Now,
		metrics:            NopMetrics{},
		log:                log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now devuelve la hora del reloj inyectado.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// AllowNegativeStock indica la política vigente de stock negativo.
func (e *Engine) AllowNegativeStock() bool {
	return e.allowNegativeStock
}

// Apply aplica un Delta dentro de la transacción de r: lee (o crea perezosa)
// la fila de saldo, aplica las mutaciones en orden y escribe fila + asiento.
// Exactamente un asiento por llamada con Meta; la versión de la fila sube en
// exactamente uno. Un conflicto de versión retorna domain.ErrConcurrencyConflict
// sin efectos; el caller reintenta la transacción completa con lecturas frescas.
func (e *Engine) Apply(ctx context.Context, r Repos, tenantID string, d Delta) (*entity.Balance, *entity.Movement, error) {
	start := e.clock()
	for _, m := range d.Mutations {
		if !m.Quantity.IsPositive() {
			return nil, nil, domain.ErrInvalidQuantity
		}
	}
	if len(d.Mutations) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}

	balance, err := r.Balances.Get(ctx, tenantID, d.Key)
	if err != nil {
		return nil, nil, err
	}
	created := false
	if balance == nil {
		// Creación perezosa al primer movimiento contra la clave.
		balance = e.newBalance(tenantID, d.Key)
		created = true
	}
	expectedVersion := balance.RowVersion

	now := e.clock()
	var movement *entity.Movement
	movementID := ""
	if d.Meta != nil {
		movement = e.buildMovement(tenantID, d.Key, d, now)
		movementID = movement.ID
	}

	for _, m := range d.Mutations {
		if err := e.mutate(balance, m, movementID, now); err != nil {
			return nil, nil, err
		}
	}

	if created {
		balance.RowVersion = 1
		if err := r.Balances.Insert(ctx, balance); err != nil {
			return nil, nil, err
		}
	} else {
		if err := r.Balances.UpdateVersioned(ctx, balance, expectedVersion); err != nil {
			return nil, nil, err
		}
		balance.RowVersion = expectedVersion + 1
	}

	if movement != nil {
		if err := r.Movements.Create(ctx, movement); err != nil {
			return nil, nil, err
		}
		e.metrics.MovementApplied(movement.Kind)
	}
	e.metrics.ApplyDuration(e.clock().Sub(start))
	return balance, movement, nil
}

// RunWithRetry ejecuta fn en una transacción del runner y la reintenta
// completa (lecturas frescas incluidas) ante CONCURRENCY_CONFLICT, con espera
// constante entre intentos, hasta agotar el presupuesto.
func (e *Engine) RunWithRetry(ctx context.Context, runner TxRunner, fn func(r Repos) error) error {
	b := retry.WithMaxRetries(uint64(e.maxRetries), retry.NewConstant(e.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := runner.Run(ctx, fn)
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			e.metrics.ConcurrencyConflict()
			e.log.Debug().Msg("conflicto de versión en saldo, reintentando transacción")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (e *Engine) mutate(b *entity.Balance, m Mutation, movementID string, now time.Time) error {
	switch m.Kind {
	case AddOnHand:
		return b.AddStock(m.Quantity, movementID, now)
	case RemoveOnHand:
		return b.RemoveStock(m.Quantity, movementID, now, e.allowNegativeStock)
	case Reserve:
		// La política de stock negativo nunca aplica a reservas.
		return b.Reserve(m.Quantity, movementID, now)
	case Unreserve:
		return b.Unreserve(m.Quantity, movementID, now)
	case AddInTransit:
		return b.AddInTransit(m.Quantity, movementID, now)
	case RemoveInTransit:
		return b.RemoveInTransit(m.Quantity, movementID, now)
	}
	return domain.ErrInvalidInput
}

func (e *Engine) newBalance(tenantID string, key entity.BalanceKey) *entity.Balance {
	return &entity.Balance{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ItemID:      key.ItemID,
		WarehouseID: key.WarehouseID,
		LocationID:  key.LocationID,
		OnHand:      decimal.Zero,
		Reserved:    decimal.Zero,
		InTransit:   decimal.Zero,
		UpdatedAt:   e.clock(),
	}
}

func (e *Engine) buildMovement(tenantID string, key entity.BalanceKey, d Delta, now time.Time) *entity.Movement {
	meta := d.Meta
	txDate := meta.TransactionDate
	if txDate.IsZero() {
		txDate = now
	}
	// La cantidad del asiento es la de la mutación principal: la última,
	// que es la que corresponde al tipo de movimiento declarado.
	qty := d.Mutations[len(d.Mutations)-1].Quantity

	var totalCost *decimal.Decimal
	if meta.UnitCost != nil {
		tc := meta.UnitCost.Mul(qty)
		totalCost = &tc
	}
	actor := meta.Actor
	if actor == "" {
		actor = "system"
	}
	return &entity.Movement{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		ItemID:            key.ItemID,
		WarehouseID:       key.WarehouseID,
		LocationID:        key.LocationID,
		Kind:              meta.Kind,
		Quantity:          qty,
		UnitCost:          meta.UnitCost,
		TotalCost:         totalCost,
		ReferenceType:     meta.ReferenceType,
		ReferenceID:       meta.ReferenceID,
		ReasonCode:        meta.ReasonCode,
		ReasonDescription: meta.ReasonDescription,
		LotNumber:         meta.LotNumber,
		SerialNumber:      meta.SerialNumber,
		ExpirationDate:    meta.ExpirationDate,
		TransactionDate:   txDate,
		CreatedAt:         now,
		CreatedBy:         actor,
		CorrelationID:     meta.CorrelationID,
		IdempotencyKey:    meta.IdempotencyKey,
	}
}
