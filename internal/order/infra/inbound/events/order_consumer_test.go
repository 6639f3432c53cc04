package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
)

type fakeOrderService struct {
	mu        sync.Mutex
	confirmed []int64
	err       error
}

func (f *fakeOrderService) ConfirmDispatch(ctx context.Context, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmed = append(f.confirmed, orderID)
	return nil
}

func envelope(t *testing.T, eventType string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	env, err := json.Marshal(sharedEvents.IntegrationEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	assert.NoError(t, err)
	return env
}

func TestHandleMessage_OrderDispatched(t *testing.T) {
	service := &fakeOrderService{}
	consumer := NewDispatchedConsumer(service, zap.NewNop())

	msg := envelope(t, orderDomain.OrderDispatchedEvent, sharedEvents.OrderDispatched{OrderID: 42})
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))

	assert.Equal(t, []int64{42}, service.confirmed)
}

func TestHandleMessage_FalloDeStoreNoConfirma(t *testing.T) {
	service := &fakeOrderService{err: errors.New("store unavailable")}
	consumer := NewDispatchedConsumer(service, zap.NewNop())

	// Un fallo reintentable del caso de uso sube al adaptador para que el
	// mensaje quede sin ack y el broker lo reentregue.
	msg := envelope(t, orderDomain.OrderDispatchedEvent, sharedEvents.OrderDispatched{OrderID: 42})
	assert.Error(t, consumer.HandleMessage(context.Background(), "42", msg))

	// Al recuperarse el store, la reentrega del mismo mensaje completa.
	service.err = nil
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))
	assert.Equal(t, []int64{42}, service.confirmed)
}

func TestHandleMessage_IgnoraOrderAccepted(t *testing.T) {
	service := &fakeOrderService{}
	consumer := NewDispatchedConsumer(service, zap.NewNop())

	msg := envelope(t, orderDomain.OrderAcceptedEvent, sharedEvents.OrderAccepted{OrderID: 42, ISBN: "1234567890", Quantity: 1})
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))

	assert.Empty(t, service.confirmed)
}

func TestHandleMessage_PayloadMalformadoNoTumbaElProceso(t *testing.T) {
	service := &fakeOrderService{}
	consumer := NewDispatchedConsumer(service, zap.NewNop())

	// Malformado no es reintentable: se descarta con ack (log + drop).
	assert.NoError(t, consumer.HandleMessage(context.Background(), "", []byte("not json at all")))
	assert.NoError(t, consumer.HandleMessage(context.Background(), "", envelope(t, orderDomain.OrderDispatchedEvent, "not an object")))

	assert.Empty(t, service.confirmed)
}

func TestHandleMessage_IgnoraCamposDesconocidos(t *testing.T) {
	service := &fakeOrderService{}
	consumer := NewDispatchedConsumer(service, zap.NewNop())

	// Compatibilidad hacia adelante: campos extra en el payload se ignoran.
	msg := envelope(t, orderDomain.OrderDispatchedEvent, map[string]interface{}{
		"orderId": 42,
		"carrier": "ACME",
	})
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))

	assert.Equal(t, []int64{42}, service.confirmed)
}
