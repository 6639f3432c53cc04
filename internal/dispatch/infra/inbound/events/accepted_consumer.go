package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/dispatch/application"
	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
	sharedUtils "github.com/davicafu/libreria/internal/shared/utils"
)

// AcceptedConsumer alimenta al dispatcher con los eventos order.accepted
// que llegan por el topic de pedidos.
type AcceptedConsumer struct {
	dispatcher *application.Dispatcher
	log        *zap.Logger
}

func NewAcceptedConsumer(dispatcher *application.Dispatcher, logger *zap.Logger) *AcceptedConsumer {
	return &AcceptedConsumer{
		dispatcher: dispatcher,
		log:        logger,
	}
}

// HandleMessage procesa un mensaje del topic. Un fallo al publicar el
// order.dispatched resultante es reintentable: devuelve error y el mensaje
// queda sin confirmar para que el broker lo reentregue.
func (c *AcceptedConsumer) HandleMessage(ctx context.Context, key string, payload []byte) error {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return nil
	}

	switch base.Type {
	case orderDomain.OrderAcceptedEvent:
		return sharedUtils.UnmarshalAndHandle[sharedEvents.OrderAccepted](c.log, base.Data, func(evt sharedEvents.OrderAccepted) error {
			ctxDispatch, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()

			if err := c.dispatcher.HandleAccepted(ctxDispatch, evt); err != nil {
				c.log.Warn("Failed to dispatch accepted order",
					zap.Int64("order_id", evt.OrderID),
					zap.Error(err),
				)
				return err
			}
			return nil
		})

	case orderDomain.OrderDispatchedEvent:
		// Viaja por el mismo topic pero lo procesa el listener de pedidos.
		return nil

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
		return nil
	}
}

// Verificación estática
var _ sharedBus.MessageHandler = (*AcceptedConsumer)(nil)
