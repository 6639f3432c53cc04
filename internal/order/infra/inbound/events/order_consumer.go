package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
	sharedUtils "github.com/davicafu/libreria/internal/shared/utils"
)

// OrderService es lo que el listener necesita del caso de uso.
type OrderService interface {
	ConfirmDispatch(ctx context.Context, orderID int64) error
}

// DispatchedConsumer es el listener de confirmación de despacho: consume
// eventos order.dispatched y marca el pedido correspondiente como DISPATCHED.
type DispatchedConsumer struct {
	service OrderService
	log     *zap.Logger
}

func NewDispatchedConsumer(service OrderService, logger *zap.Logger) *DispatchedConsumer {
	return &DispatchedConsumer{
		service: service,
		log:     logger,
	}
}

// HandleMessage procesa un mensaje del topic. Solo un fallo reintentable de
// ConfirmDispatch (error de store, conflicto persistente) devuelve error y
// deja el mensaje sin confirmar; pedido inexistente, rechazado o duplicado
// ya los absorbe el caso de uso con un nil.
func (c *DispatchedConsumer) HandleMessage(ctx context.Context, key string, payload []byte) error {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return nil
	}

	switch base.Type {
	case orderDomain.OrderDispatchedEvent:
		return sharedUtils.UnmarshalAndHandle[sharedEvents.OrderDispatched](c.log, base.Data, func(evt sharedEvents.OrderDispatched) error {
			ctxOrder, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()

			if err := c.service.ConfirmDispatch(ctxOrder, evt.OrderID); err != nil {
				c.log.Warn("Failed to process dispatch confirmation",
					zap.Int64("order_id", evt.OrderID),
					zap.Error(err),
				)
				return err
			}
			return nil
		})

	case orderDomain.OrderAcceptedEvent:
		// Viaja por el mismo topic pero lo procesa el dispatcher.
		return nil

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
		return nil
	}
}

// Verificación estática
var _ sharedBus.MessageHandler = (*DispatchedConsumer)(nil)
