package application

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/dispatch/domain"
	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
)

// Dispatcher compone las etapas pack y label y publica el resultado.
// La composición admite dos topologías con la misma semántica: fusionada en
// un único handler (Dispatch) o partida en dos goroutines unidas por un
// canal intermedio (RunSplit).
type Dispatcher struct {
	pack      domain.PackStage
	label     domain.LabelStage
	publisher sharedBus.EventBus
	log       *zap.Logger
}

// NewDispatcher constructor con las etapas por defecto.
func NewDispatcher(publisher sharedBus.EventBus, log *zap.Logger) *Dispatcher {
	return NewDispatcherWithStages(domain.PackFunc(domain.Pack), domain.LabelFunc(domain.Label), publisher, log)
}

// NewDispatcherWithStages permite inyectar etapas alternativas.
func NewDispatcherWithStages(pack domain.PackStage, label domain.LabelStage, publisher sharedBus.EventBus, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		pack:      pack,
		label:     label,
		publisher: publisher,
		log:       log,
	}
}

// Dispatch ejecuta el pipeline fusionado: label(pack(evt)).
func (d *Dispatcher) Dispatch(evt sharedEvents.OrderAccepted) sharedEvents.OrderDispatched {
	return d.label.Label(d.pack.Pack(evt))
}

// HandleAccepted procesa un evento de aceptación: ejecuta el pipeline y
// publica exactamente un order.dispatched por entrada.
func (d *Dispatcher) HandleAccepted(ctx context.Context, evt sharedEvents.OrderAccepted) error {
	dispatched := d.Dispatch(evt)

	payload, err := json.Marshal(dispatched)
	if err != nil {
		return err
	}

	envelope := sharedEvents.IntegrationEvent{
		Type:      orderDomain.OrderDispatchedEvent,
		Timestamp: time.Now().UTC(),
		Data:      payload,
		Key:       dispatched.PartitionKey(),
	}

	if err := d.publisher.Publish(ctx, envelope); err != nil {
		return err
	}

	d.log.Info("Pedido empaquetado y etiquetado",
		zap.Int64("order_id", dispatched.OrderID),
	)
	return nil
}

// RunSplit despliega las etapas como dos procesos independientes unidos por
// un canal intermedio. Devuelve el canal de salida; se cierra al agotarse la
// entrada o al cancelar el contexto.
func (d *Dispatcher) RunSplit(ctx context.Context, in <-chan sharedEvents.OrderAccepted) <-chan sharedEvents.OrderDispatched {
	packed := make(chan int64)
	out := make(chan sharedEvents.OrderDispatched)

	go func() {
		defer close(packed)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-in:
				if !ok {
					return
				}
				select {
				case packed <- d.pack.Pack(evt):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case orderID, ok := <-packed:
				if !ok {
					return
				}
				select {
				case out <- d.label.Label(orderID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
