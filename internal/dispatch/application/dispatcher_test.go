package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	"github.com/davicafu/libreria/tests/mocks"
)

func TestDispatch_Fusionado(t *testing.T) {
	dispatcher := NewDispatcher(&mocks.RecordingPublisher{}, zap.NewNop())

	evt := sharedEvents.OrderAccepted{OrderID: 121, ISBN: "1234567890", Quantity: 3}

	assert.Equal(t, sharedEvents.OrderDispatched{OrderID: 121}, dispatcher.Dispatch(evt))
}

func TestHandleAccepted_PublicaOrderDispatched(t *testing.T) {
	publisher := &mocks.RecordingPublisher{}
	dispatcher := NewDispatcher(publisher, zap.NewNop())

	evt := sharedEvents.OrderAccepted{OrderID: 7, ISBN: "1234567890", Quantity: 2}
	require.NoError(t, dispatcher.HandleAccepted(context.Background(), evt))

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, orderDomain.OrderDispatchedEvent, published[0].Type)

	var dispatched sharedEvents.OrderDispatched
	require.NoError(t, json.Unmarshal(published[0].Data, &dispatched))
	assert.Equal(t, int64(7), dispatched.OrderID)
}

func TestRunSplit_MismaSemanticaQueFusionado(t *testing.T) {
	dispatcher := NewDispatcher(&mocks.RecordingPublisher{}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := make(chan sharedEvents.OrderAccepted, 3)
	events := []sharedEvents.OrderAccepted{
		{OrderID: 1, ISBN: "1111111111", Quantity: 1},
		{OrderID: 2, ISBN: "2222222222", Quantity: 2},
		{OrderID: 3, ISBN: "3333333333", Quantity: 3},
	}
	for _, evt := range events {
		in <- evt
	}
	close(in)

	out := dispatcher.RunSplit(ctx, in)

	var got []sharedEvents.OrderDispatched
	for dispatched := range out {
		got = append(got, dispatched)
	}

	// Las etapas partidas por canal producen lo mismo que la composición
	// fusionada, en el mismo orden.
	require.Len(t, got, 3)
	for i, evt := range events {
		assert.Equal(t, dispatcher.Dispatch(evt), got[i])
	}
}
