package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
)

// InMemoryOrderRepo simula OrderRepository con outbox incluido.
type InMemoryOrderRepo struct {
	Orders map[int64]*orderDomain.Order
	Outbox []sharedDomain.OutboxEvent
	nextID int64
	mu     sync.Mutex

	// UpdateCalls cuenta las escrituras de estado, para asertar que los
	// duplicados no vuelven a escribir.
	UpdateCalls int
}

func NewInMemoryOrderRepo() *InMemoryOrderRepo {
	return &InMemoryOrderRepo{
		Orders: make(map[int64]*orderDomain.Order),
		Outbox: []sharedDomain.OutboxEvent{},
	}
}

// Create con outbox
func (r *InMemoryOrderRepo) Create(ctx context.Context, o *orderDomain.Order, buildEvt func(*orderDomain.Order) *sharedDomain.OutboxEvent) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	o.ID = r.nextID

	stored := *o
	r.Orders[o.ID] = &stored

	if buildEvt != nil {
		if evt := buildEvt(o); evt != nil {
			r.Outbox = append(r.Outbox, *evt)
		}
	}
	return o.ID, nil
}

// GetByID devuelve una copia para imitar la lectura desde la BD.
func (r *InMemoryOrderRepo) GetByID(ctx context.Context, id int64) (*orderDomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.Orders[id]
	if !ok {
		return nil, orderDomain.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

// UpdateStatus con chequeo optimista de versión.
func (r *InMemoryOrderRepo) UpdateStatus(ctx context.Context, id int64, expectedVersion int64, status orderDomain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.Orders[id]
	if !ok {
		return orderDomain.ErrOrderNotFound
	}
	if o.Version != expectedVersion {
		return orderDomain.ErrVersionConflict
	}

	o.Status = status
	o.Version++
	r.UpdateCalls++
	return nil
}

func (r *InMemoryOrderRepo) List(ctx context.Context) ([]*orderDomain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []*orderDomain.Order
	for _, o := range r.Orders {
		copied := *o
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *InMemoryOrderRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []sharedDomain.OutboxEvent
	for _, evt := range r.Outbox {
		if !evt.Processed {
			pending = append(pending, evt)
			if len(pending) >= limit {
				break
			}
		}
	}
	return pending, nil
}

func (r *InMemoryOrderRepo) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.Outbox {
		if r.Outbox[i].ID == id {
			r.Outbox[i].Processed = true
		}
	}
	return nil
}

// Verificación estática
var _ orderDomain.OrderRepository = (*InMemoryOrderRepo)(nil)
