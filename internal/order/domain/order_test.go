package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAcceptedOrder(t *testing.T) {
	book := BookInfo{ISBN: "1234567890", Title: "Northern Lights", Author: "Lyra Silverstar", Price: 9.90}

	order := BuildAcceptedOrder("1234567890", 3, book)

	assert.Equal(t, StatusAccepted, order.Status)
	assert.Equal(t, "1234567890", order.ISBN)
	assert.Equal(t, 3, order.Quantity)
	assert.Equal(t, "Northern Lights", order.BookTitle)
	assert.Equal(t, 9.90, order.BookPrice)
	assert.Equal(t, int64(1), order.Version)
}

func TestBuildRejectedOrder_SinInstantanea(t *testing.T) {
	order := BuildRejectedOrder("9999999999", 2)

	assert.Equal(t, StatusRejected, order.Status)
	// Un rechazo no lleva instantánea del libro.
	assert.Empty(t, order.BookTitle)
	assert.Empty(t, order.BookAuthor)
	assert.Zero(t, order.BookPrice)
}

func TestDispatch_DesdeAccepted(t *testing.T) {
	order := BuildAcceptedOrder("1234567890", 1, BookInfo{ISBN: "1234567890", Title: "T", Author: "A", Price: 1})

	changed := order.Dispatch()

	assert.True(t, changed)
	assert.Equal(t, StatusDispatched, order.Status)
}

func TestDispatch_EstadoTerminalEsNoOp(t *testing.T) {
	rejected := BuildRejectedOrder("1234567890", 1)
	assert.False(t, rejected.Dispatch())
	assert.Equal(t, StatusRejected, rejected.Status)

	dispatched := BuildAcceptedOrder("1234567890", 1, BookInfo{})
	dispatched.Dispatch()
	// Segunda transición: no-op idempotente.
	assert.False(t, dispatched.Dispatch())
	assert.Equal(t, StatusDispatched, dispatched.Status)
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusDispatched.Terminal())
}
