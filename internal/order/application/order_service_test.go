package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/order/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
	"github.com/davicafu/libreria/tests/mocks"
)

func testCatalog() *mocks.StaticCatalog {
	return mocks.NewStaticCatalog(domain.BookInfo{
		ISBN:   "1234567890",
		Title:  "Northern Lights",
		Author: "Lyra Silverstar",
		Price:  9.90,
	})
}

func TestSubmitOrder_Accepted(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, err := service.SubmitOrder(context.Background(), "1234567890", 3)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.StatusAccepted, order.Status)
	assert.Equal(t, "Northern Lights", order.BookTitle)
	assert.Equal(t, 9.90, order.BookPrice)
	assert.NotZero(t, order.ID)

	// ✅ Exactamente un evento outbox con el id persistido
	require.Len(t, repo.Outbox, 1)
	evt := repo.Outbox[0]
	assert.Equal(t, domain.OrderAcceptedEvent, evt.EventType)
	assert.Equal(t, order.PartitionKey(), evt.AggregateID)

	payload, ok := evt.Payload.(sharedEvents.OrderAccepted)
	require.True(t, ok)
	assert.Equal(t, order.ID, payload.OrderID)
	assert.Equal(t, "1234567890", payload.ISBN)
	assert.Equal(t, 3, payload.Quantity)
}

func TestSubmitOrder_Rejected_LibroDesconocido(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	// "Libro no encontrado" es un rechazo normal, nunca un error.
	order, err := service.SubmitOrder(context.Background(), "9999999999", 2)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, order.Status)
	assert.Empty(t, order.BookTitle)
	assert.Zero(t, order.BookPrice)

	// ✅ Un rechazo no emite ningún evento
	assert.Len(t, repo.Outbox, 0)
}

func TestSubmitOrder_Rejected_FalloDeCatalogo(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	catalog := testCatalog()
	catalog.Err = errors.New("catalog timeout")
	service := NewOrderService(repo, catalog, nil, zap.NewNop())

	order, err := service.SubmitOrder(context.Background(), "1234567890", 1)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRejected, order.Status)
	assert.Len(t, repo.Outbox, 0)
}

func TestSubmitOrder_Rejected_PeticionInvalida(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, err := service.SubmitOrder(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, order.Status)

	order, err = service.SubmitOrder(context.Background(), "1234567890", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, order.Status)
}

func TestConfirmDispatch_Success(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, _ := service.SubmitOrder(context.Background(), "1234567890", 3)

	err := service.ConfirmDispatch(context.Background(), order.ID)
	require.NoError(t, err)

	got, _ := repo.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusDispatched, got.Status)
	assert.Equal(t, order.Version+1, got.Version)
}

func TestConfirmDispatch_DuplicadoEsNoOp(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, _ := service.SubmitOrder(context.Background(), "1234567890", 3)

	require.NoError(t, service.ConfirmDispatch(context.Background(), order.ID))
	writesAfterFirst := repo.UpdateCalls

	// Segunda entrega del mismo evento: mismo estado final, sin escritura.
	require.NoError(t, service.ConfirmDispatch(context.Background(), order.ID))

	got, _ := repo.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusDispatched, got.Status)
	assert.Equal(t, writesAfterFirst, repo.UpdateCalls)
}

func TestConfirmDispatch_PedidoRechazadoNoMuta(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, _ := service.SubmitOrder(context.Background(), "9999999999", 1)
	require.Equal(t, domain.StatusRejected, order.Status)

	// Un order.dispatched extraviado sobre un rechazo se absorbe sin error.
	require.NoError(t, service.ConfirmDispatch(context.Background(), order.ID))

	got, _ := repo.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Zero(t, repo.UpdateCalls)
}

func TestConfirmDispatch_PedidoInexistente(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	// Mensaje mal enrutado: se loguea y se confirma, nunca es fatal.
	assert.NoError(t, service.ConfirmDispatch(context.Background(), 42))
}

func TestConfirmDispatch_ConflictoDeVersionReintenta(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, _ := service.SubmitOrder(context.Background(), "1234567890", 3)

	// Otra escritura se cuela entre la lectura y el update.
	repo.Orders[order.ID].Version++

	err := service.ConfirmDispatch(context.Background(), order.ID)
	require.NoError(t, err)

	got, _ := repo.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.StatusDispatched, got.Status)
}

func TestDailyTrend_SinAnaliticaConfigurada(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	_, err := service.DailyTrend(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	assert.ErrorIs(t, err, domain.ErrAnalyticsUnavailable)
}

func TestDailyTrend_DevuelveLaSerie(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	analytics := &mocks.RecordingAnalytics{
		Trend: []domain.DailyOrderTrend{
			{Day: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), Accepted: 3, Rejected: 1, Dispatched: 2},
		},
	}
	service := NewOrderService(repo, testCatalog(), analytics, zap.NewNop())

	trend, err := service.DailyTrend(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)
	require.Len(t, trend, 1)
	assert.Equal(t, uint64(3), trend[0].Accepted)
	assert.Equal(t, uint64(2), trend[0].Dispatched)
}

func TestSubmitOrder_PayloadSerializaConNombresEstables(t *testing.T) {
	repo := mocks.NewInMemoryOrderRepo()
	service := NewOrderService(repo, testCatalog(), nil, zap.NewNop())

	order, _ := service.SubmitOrder(context.Background(), "1234567890", 3)

	data, err := json.Marshal(repo.Outbox[0].Payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(order.ID), decoded["orderId"])
	assert.Equal(t, "1234567890", decoded["isbn"])
	assert.Equal(t, float64(3), decoded["quantity"])
}
