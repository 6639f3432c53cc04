package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/order/domain"
	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
)

// OrderService define los casos de uso del contexto de pedidos: la decisión
// de aceptación y la confirmación de despacho.
type OrderService struct {
	repo      domain.OrderRepository
	catalog   domain.BookCatalog
	analytics domain.OrderAnalytics // puede ser nil
	log       *zap.Logger
}

// NewOrderService constructor
func NewOrderService(repo domain.OrderRepository, catalog domain.BookCatalog, analytics domain.OrderAnalytics, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:      repo,
		catalog:   catalog,
		analytics: analytics,
		log:       log,
	}
}

// SubmitOrder decide ACCEPTED o REJECTED para un pedido nuevo. Siempre
// devuelve un pedido definitivo: un libro inexistente, un timeout del
// catálogo o una petición inválida son rechazos normales, nunca errores.
// Solo un fallo de persistencia produce error.
func (s *OrderService) SubmitOrder(ctx context.Context, isbn string, quantity int) (*domain.Order, error) {
	book, err := s.lookupBook(ctx, isbn, quantity)
	if err != nil {
		return s.persistRejected(ctx, isbn, quantity, err)
	}

	order := domain.BuildAcceptedOrder(isbn, quantity, *book)

	// El evento se construye dentro de la transacción, cuando el id
	// generado ya se conoce. Persistencia y emisión quedan acopladas por
	// la tabla outbox: el relayer publica después del commit.
	buildEvt := func(o *domain.Order) *sharedDomain.OutboxEvent {
		return &sharedDomain.OutboxEvent{
			ID:            uuid.New(),
			AggregateType: "order",
			AggregateID:   o.PartitionKey(),
			EventType:     domain.OrderAcceptedEvent,
			Payload: sharedEvents.OrderAccepted{
				OrderID:  o.ID,
				ISBN:     o.ISBN,
				Quantity: o.Quantity,
			},
			CreatedAt: time.Now().UTC(),
			Processed: false,
		}
	}

	if _, err := s.repo.Create(ctx, order, buildEvt); err != nil {
		return nil, err
	}

	s.log.Info("Pedido aceptado",
		zap.Int64("order_id", order.ID),
		zap.String("isbn", isbn),
		zap.Int("quantity", quantity),
	)

	s.logAnalytics(ctx, order, domain.OrderAcceptedEvent)
	return order, nil
}

func (s *OrderService) lookupBook(ctx context.Context, isbn string, quantity int) (*domain.BookInfo, error) {
	if isbn == "" || quantity <= 0 {
		return nil, domain.ErrBookNotFound
	}
	return s.catalog.Lookup(ctx, isbn)
}

func (s *OrderService) persistRejected(ctx context.Context, isbn string, quantity int, cause error) (*domain.Order, error) {
	if !errors.Is(cause, domain.ErrBookNotFound) {
		// Fallo de red o timeout del catálogo: también rechazo, pero
		// lo dejamos registrado con su causa real.
		s.log.Warn("Consulta al catálogo fallida, pedido rechazado",
			zap.String("isbn", isbn),
			zap.Error(cause),
		)
	}

	order := domain.BuildRejectedOrder(isbn, quantity)

	// Un rechazo no emite ningún evento.
	if _, err := s.repo.Create(ctx, order, nil); err != nil {
		return nil, err
	}

	s.log.Info("Pedido rechazado", zap.Int64("order_id", order.ID), zap.String("isbn", isbn))
	s.logAnalytics(ctx, order, "order.rejected")
	return order, nil
}

// ConfirmDispatch procesa la confirmación de despacho de un pedido. Es la
// frontera de idempotencia del pipeline: un duplicado, un pedido inexistente
// o un pedido rechazado se absorben con un ack sin mutación.
func (s *OrderService) ConfirmDispatch(ctx context.Context, orderID int64) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.log.Warn("Confirmación de despacho para pedido inexistente", zap.Int64("order_id", orderID))
			return nil
		}
		return err
	}

	switch order.Status {
	case domain.StatusDispatched:
		// Entrega duplicada: no-op.
		s.log.Debug("Confirmación duplicada ignorada", zap.Int64("order_id", orderID))
		return nil
	case domain.StatusRejected:
		s.log.Warn("Confirmación de despacho para pedido rechazado, ignorada", zap.Int64("order_id", orderID))
		return nil
	}

	err = s.repo.UpdateStatus(ctx, orderID, order.Version, domain.StatusDispatched)
	if errors.Is(err, domain.ErrVersionConflict) {
		// Reintento único con lectura fresca.
		order, err = s.repo.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return nil
		}
		err = s.repo.UpdateStatus(ctx, orderID, order.Version, domain.StatusDispatched)
	}
	if err != nil {
		return err
	}

	s.log.Info("Pedido despachado", zap.Int64("order_id", orderID))

	order.Status = domain.StatusDispatched
	s.logAnalytics(ctx, order, domain.OrderDispatchedEvent)
	return nil
}

// GetOrder obtiene un pedido por id.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// ListOrders devuelve todos los pedidos.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// DailyTrend devuelve la serie diaria de pedidos por resultado. Requiere el
// almacén analítico configurado.
func (s *OrderService) DailyTrend(ctx context.Context, start, end time.Time) ([]domain.DailyOrderTrend, error) {
	if s.analytics == nil {
		return nil, domain.ErrAnalyticsUnavailable
	}
	return s.analytics.GetDailyTrend(ctx, start, end)
}

func (s *OrderService) logAnalytics(ctx context.Context, order *domain.Order, eventType string) {
	if s.analytics == nil {
		return
	}
	go func(o domain.Order) {
		ctxLog, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.analytics.LogStatusChange(ctxLog, &o, eventType); err != nil {
			s.log.Warn("⚠️ Fallo al registrar analítica", zap.Int64("order_id", o.ID), zap.Error(err))
		}
	}(*order)
}
