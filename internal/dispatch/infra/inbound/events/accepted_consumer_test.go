package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/dispatch/application"
	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	"github.com/davicafu/libreria/tests/mocks"
)

func envelope(t *testing.T, eventType string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	env, err := json.Marshal(sharedEvents.IntegrationEvent{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	require.NoError(t, err)
	return env
}

func TestHandleMessage_OrderAcceptedPublicaDispatched(t *testing.T) {
	publisher := &mocks.RecordingPublisher{}
	consumer := NewAcceptedConsumer(application.NewDispatcher(publisher, zap.NewNop()), zap.NewNop())

	msg := envelope(t, orderDomain.OrderAcceptedEvent, sharedEvents.OrderAccepted{OrderID: 42, ISBN: "1234567890", Quantity: 3})
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, orderDomain.OrderDispatchedEvent, published[0].Type)
}

func TestHandleMessage_FalloDePublicacionNoConfirma(t *testing.T) {
	publisher := &mocks.RecordingPublisher{FailWith: errors.New("broker down")}
	consumer := NewAcceptedConsumer(application.NewDispatcher(publisher, zap.NewNop()), zap.NewNop())

	// Si el order.dispatched no llega al broker, el order.accepted queda
	// sin ack y se reentrega.
	msg := envelope(t, orderDomain.OrderAcceptedEvent, sharedEvents.OrderAccepted{OrderID: 42, ISBN: "1234567890", Quantity: 3})
	assert.Error(t, consumer.HandleMessage(context.Background(), "42", msg))

	// Broker recuperado: la reentrega produce exactamente un evento.
	publisher.FailWith = nil
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))
	assert.Len(t, publisher.Published(), 1)
}

func TestHandleMessage_IgnoraOrderDispatched(t *testing.T) {
	publisher := &mocks.RecordingPublisher{}
	consumer := NewAcceptedConsumer(application.NewDispatcher(publisher, zap.NewNop()), zap.NewNop())

	msg := envelope(t, orderDomain.OrderDispatchedEvent, sharedEvents.OrderDispatched{OrderID: 42})
	assert.NoError(t, consumer.HandleMessage(context.Background(), "42", msg))

	assert.Empty(t, publisher.Published())
}
