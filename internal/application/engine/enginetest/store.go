// Package enginetest provee repositorios en memoria para probar el motor de
// saldos y los casos de uso sin PostgreSQL. El BalanceRepo respeta la
// semántica de CAS sobre RowVersion, así los tests de concurrencia ejercitan
// los mismos conflictos que la base real.
package enginetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu           sync.Mutex
	balances     map[string]entity.Balance
	movements    []entity.Movement
	reservations map[string]entity.Reservation
	transfers    map[string]entity.Transfer
	sequences    map[string]int

	items      map[string]entity.Item
	warehouses map[string]entity.Warehouse
	locations  map[string]entity.Location
}

// NewStore construye el estado vacío.
func NewStore() *Store {
	return &Store{
		balances:     make(map[string]entity.Balance),
		reservations: make(map[string]entity.Reservation),
		transfers:    make(map[string]entity.Transfer),
		sequences:    make(map[string]int),
		items:        make(map[string]entity.Item),
		warehouses:   make(map[string]entity.Warehouse),
		locations:    make(map[string]entity.Location),
	}
}

func balanceKey(tenantID string, key entity.BalanceKey) string {
	loc := ""
	if key.LocationID != nil {
		loc = *key.LocationID
	}
	return strings.Join([]string{tenantID, key.ItemID, key.WarehouseID, loc}, "|")
}

// Repos devuelve el juego de repositorios sobre este store.
func (s *Store) Repos() engine.Repos {
	return engine.Repos{
		Balances:     &BalanceRepo{store: s},
		Movements:    &MovementRepo{store: s},
		Reservations: &ReservationRepo{store: s},
		Transfers:    &TransferRepo{store: s},
	}
}

// Runner devuelve un TxRunner que ejecuta fn directo sobre el store. No hay
// rollback: los tests de conflicto se apoyan en que el CAS rechaza la
// escritura antes de cualquier efecto.
func (s *Store) Runner() engine.TxRunner {
	return runner{store: s}
}

type runner struct {
	store *Store
}

func (r runner) Run(_ context.Context, fn func(repos engine.Repos) error) error {
	return fn(r.store.Repos())
}

// SeedItem registra un ítem de catálogo.
func (s *Store) SeedItem(tenantID, id, sku string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = entity.Item{ID: id, TenantID: tenantID, SKU: sku, Name: sku}
}

// SeedWarehouse registra una bodega.
func (s *Store) SeedWarehouse(tenantID, id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[id] = entity.Warehouse{ID: id, TenantID: tenantID, Code: code, Name: code}
}

// SeedLocation registra una ubicación dentro de una bodega.
func (s *Store) SeedLocation(tenantID, id, warehouseID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[id] = entity.Location{ID: id, TenantID: tenantID, WarehouseID: warehouseID, Code: code}
}

// Movements devuelve una copia del ledger acumulado.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.movements))
	copy(out, s.movements)
	return out
}

// Balance devuelve una copia del saldo, o nil si no existe.
func (s *Store) Balance(tenantID string, key entity.BalanceKey) *entity.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[balanceKey(tenantID, key)]; ok {
		return &b
	}
	return nil
}

// BalanceRepo repositorio de saldos en memoria con CAS sobre RowVersion.
type BalanceRepo struct {
	store *Store
}

func (r *BalanceRepo) Get(_ context.Context, tenantID string, key entity.BalanceKey) (*entity.Balance, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[balanceKey(tenantID, key)]; ok {
		return &b, nil
	}
	return nil, nil
}

func (r *BalanceRepo) Insert(_ context.Context, b *entity.Balance) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := balanceKey(b.TenantID, b.Key())
	if _, exists := s.balances[k]; exists {
		return domain.ErrConcurrencyConflict
	}
	s.balances[k] = *b
	return nil
}

func (r *BalanceRepo) UpdateVersioned(_ context.Context, b *entity.Balance, expectedVersion int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := balanceKey(b.TenantID, b.Key())
	current, ok := s.balances[k]
	if !ok || current.RowVersion != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	stored := *b
	stored.RowVersion = expectedVersion + 1
	s.balances[k] = stored
	return nil
}

func (r *BalanceRepo) List(_ context.Context, tenantID string, filter repository.BalanceFilter) ([]*entity.Balance, int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*entity.Balance
	for _, b := range s.balances {
		if b.TenantID != tenantID {
			continue
		}
		if filter.ItemID != "" && b.ItemID != filter.ItemID {
			continue
		}
		if filter.WarehouseID != "" && b.WarehouseID != filter.WarehouseID {
			continue
		}
		copied := b
		list = append(list, &copied)
	}
	return list, len(list), nil
}

// MovementRepo ledger en memoria, append-only.
type MovementRepo struct {
	store *Store
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, *m)
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Movement, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movements {
		if m.TenantID == tenantID && m.ID == id {
			copied := m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) List(_ context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*entity.Movement
	for _, m := range s.movements {
		if m.TenantID != tenantID {
			continue
		}
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		copied := m
		list = append(list, &copied)
	}
	return list, len(list), nil
}

// ReservationRepo reservas en memoria.
type ReservationRepo struct {
	store *Store
}

func (r *ReservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Reservation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.reservations[id]; ok && res.TenantID == tenantID {
		return &res, nil
	}
	return nil, nil
}

func (r *ReservationRepo) UpdateStatus(_ context.Context, res *entity.Reservation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[res.ID] = *res
	return nil
}

func (r *ReservationRepo) List(_ context.Context, tenantID string, filter repository.ReservationFilter) ([]*entity.Reservation, int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*entity.Reservation
	for _, res := range s.reservations {
		if res.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		copied := res
		list = append(list, &copied)
	}
	return list, len(list), nil
}

// TransferRepo traslados en memoria con CAS sobre RowVersion y secuencia
// serializada por el mutex del store.
type TransferRepo struct {
	store *Store
}

func (r *TransferRepo) Create(_ context.Context, t *entity.Transfer) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Transfer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.transfers[id]; ok && t.TenantID == tenantID {
		copied := cloneTransfer(&t)
		return &copied, nil
	}
	return nil, nil
}

func (r *TransferRepo) UpdateVersioned(_ context.Context, t *entity.Transfer, expectedVersion int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.transfers[t.ID]
	if !ok || current.RowVersion != expectedVersion {
		return domain.ErrConcurrencyConflict
	}
	stored := cloneTransfer(t)
	stored.RowVersion = expectedVersion + 1
	s.transfers[t.ID] = stored
	t.RowVersion = expectedVersion + 1
	return nil
}

// NextSequence reserva el consecutivo al asignarlo, no al insertar: el lock
// advisory real cubre asignación e inserción dentro de la misma transacción,
// así que dos creaciones concurrentes jamás pueden leer el mismo máximo.
func (r *TransferRepo) NextSequence(_ context.Context, tenantID, prefix string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	k := tenantID + "|" + prefix
	max := s.sequences[k]
	for _, t := range s.transfers {
		if t.TenantID != tenantID || !strings.HasPrefix(t.TransferNumber, prefix+"-") {
			continue
		}
		suffix := strings.TrimPrefix(t.TransferNumber, prefix+"-")
		n := 0
		for _, ch := range suffix {
			if ch < '0' || ch > '9' {
				n = 0
				break
			}
			n = n*10 + int(ch-'0')
		}
		if n > max {
			max = n
		}
	}
	s.sequences[k] = max + 1
	return max + 1, nil
}

func (r *TransferRepo) List(_ context.Context, tenantID string, filter repository.TransferFilter) ([]*entity.Transfer, int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*entity.Transfer
	for _, t := range s.transfers {
		if t.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		copied := cloneTransfer(&t)
		list = append(list, &copied)
	}
	return list, len(list), nil
}

func cloneTransfer(t *entity.Transfer) entity.Transfer {
	copied := *t
	copied.Lines = make([]entity.TransferLine, len(t.Lines))
	copy(copied.Lines, t.Lines)
	return copied
}

// ItemRepo catálogo de ítems en memoria (solo lo que usa el validador).
type ItemRepo struct {
	Store *Store
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	r.Store.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	if item, ok := r.Store.items[id]; ok {
		return &item, nil
	}
	return nil, nil
}

func (r *ItemRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]*entity.Item, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var list []*entity.Item
	for _, item := range r.Store.items {
		if item.TenantID == tenantID {
			copied := item
			list = append(list, &copied)
		}
	}
	return list, nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	Store *Store
}

func (r *WarehouseRepo) Create(_ context.Context, wh *entity.Warehouse) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	r.Store.warehouses[wh.ID] = *wh
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	if wh, ok := r.Store.warehouses[id]; ok {
		return &wh, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) ListByTenant(_ context.Context, tenantID string, _, _ int) ([]*entity.Warehouse, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var list []*entity.Warehouse
	for _, wh := range r.Store.warehouses {
		if wh.TenantID == tenantID {
			copied := wh
			list = append(list, &copied)
		}
	}
	return list, nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct {
	Store *Store
}

func (r *LocationRepo) Create(_ context.Context, loc *entity.Location) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	r.Store.locations[loc.ID] = *loc
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	if loc, ok := r.Store.locations[id]; ok {
		return &loc, nil
	}
	return nil, nil
}

func (r *LocationRepo) ListByWarehouse(_ context.Context, warehouseID string) ([]*entity.Location, error) {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()
	var list []*entity.Location
	for _, loc := range r.Store.locations {
		if loc.WarehouseID == warehouseID {
			copied := loc
			list = append(list, &copied)
		}
	}
	return list, nil
}

// FixedClock reloj congelado para tests deterministas.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
