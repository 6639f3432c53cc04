package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
)

// RecordingPublisher guarda los sobres publicados para inspección en tests.
type RecordingPublisher struct {
	Events   []sharedEvents.IntegrationEvent
	FailWith error
	mu       sync.Mutex
}

func (p *RecordingPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	if env, ok := event.(sharedEvents.IntegrationEvent); ok {
		p.Events = append(p.Events, env)
	}
	return nil
}

func (p *RecordingPublisher) Published() []sharedEvents.IntegrationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sharedEvents.IntegrationEvent, len(p.Events))
	copy(out, p.Events)
	return out
}

// Verificación estática
var _ sharedBus.EventBus = (*RecordingPublisher)(nil)

// ---------- Mocks testify para el outbox worker ----------

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]sharedDomain.OutboxEvent)
	return events, args.Error(1)
}

func (m *MockOutboxRepository) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Verificación estática
var (
	_ sharedDomain.OutboxRepository = (*MockOutboxRepository)(nil)
	_ sharedBus.EventBus            = (*MockPublisher)(nil)
)
