package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/davicafu/libreria/internal/order/domain"
	orderSqlite "github.com/davicafu/libreria/internal/order/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
	sharedEvents "github.com/davicafu/libreria/internal/shared/events"
)

func setupOrderDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, orderSqlite.InitSQLite(db))
	return db
}

func TestOrderSQLiteIntegration_CreateConOutbox(t *testing.T) {
	db := setupOrderDB(t)
	defer db.Close()

	repo := orderSqlite.NewOrderRepoSQLite(db)

	order := domain.BuildAcceptedOrder("1234567890", 3, domain.BookInfo{
		ISBN: "1234567890", Title: "Northern Lights", Author: "Lyra Silverstar", Price: 9.90,
	})

	id, err := repo.Create(context.Background(), order, func(o *domain.Order) *sharedDomain.OutboxEvent {
		return &sharedDomain.OutboxEvent{
			ID:            uuid.New(),
			AggregateType: "order",
			AggregateID:   o.PartitionKey(),
			EventType:     domain.OrderAcceptedEvent,
			Payload:       sharedEvents.OrderAccepted{OrderID: o.ID, ISBN: o.ISBN, Quantity: o.Quantity},
			CreatedAt:     time.Now().UTC(),
		}
	})
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)

	// El pedido se lee tal y como se escribió.
	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, got.Status)
	assert.Equal(t, "Northern Lights", got.BookTitle)
	assert.Equal(t, int64(1), got.Version)

	// El evento quedó pendiente en la misma transacción.
	pending, err := repo.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.OrderAcceptedEvent, pending[0].EventType)
	assert.Equal(t, got.PartitionKey(), pending[0].AggregateID)

	// Marcarlo lo saca de la cola.
	require.NoError(t, repo.MarkOutboxProcessed(context.Background(), pending[0].ID))
	pending, err = repo.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}

func TestOrderSQLiteIntegration_CreateRechazadoSinEvento(t *testing.T) {
	db := setupOrderDB(t)
	defer db.Close()

	repo := orderSqlite.NewOrderRepoSQLite(db)

	order := domain.BuildRejectedOrder("9999999999", 2)
	_, err := repo.Create(context.Background(), order, nil)
	require.NoError(t, err)

	pending, err := repo.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 0)
}

func TestOrderSQLiteIntegration_UpdateStatusOptimista(t *testing.T) {
	db := setupOrderDB(t)
	defer db.Close()

	repo := orderSqlite.NewOrderRepoSQLite(db)

	order := domain.BuildAcceptedOrder("1234567890", 1, domain.BookInfo{ISBN: "1234567890", Title: "T", Author: "A", Price: 1})
	id, err := repo.Create(context.Background(), order, nil)
	require.NoError(t, err)

	// Versión correcta: escribe e incrementa.
	require.NoError(t, repo.UpdateStatus(context.Background(), id, 1, domain.StatusDispatched))

	got, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, got.Status)
	assert.Equal(t, int64(2), got.Version)

	// Versión vieja: conflicto distinguible.
	err = repo.UpdateStatus(context.Background(), id, 1, domain.StatusDispatched)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// Pedido inexistente: not found distinguible.
	err = repo.UpdateStatus(context.Background(), 9999, 1, domain.StatusDispatched)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderSQLiteIntegration_GetByIDNotFound(t *testing.T) {
	db := setupOrderDB(t)
	defer db.Close()

	repo := orderSqlite.NewOrderRepoSQLite(db)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
