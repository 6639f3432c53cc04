package domain

import (
	"strconv"
	"time"

	sharedBus "github.com/davicafu/libreria/internal/shared/platform/bus"
)

// Topic y tipos de evento de integración del contexto de pedidos.
const (
	OrderTopic = "order-events"

	OrderAcceptedEvent   = "order.accepted"
	OrderDispatchedEvent = "order.dispatched"
)

// OrderStatus es el estado de un pedido dentro de su ciclo de vida.
// REJECTED y DISPATCHED son terminales: una vez alcanzados no hay más
// transiciones posibles.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING" // transitorio, nunca se persiste
	StatusAccepted   OrderStatus = "ACCEPTED"
	StatusRejected   OrderStatus = "REJECTED"
	StatusDispatched OrderStatus = "DISPATCHED"
)

// Terminal indica si el estado no admite más transiciones.
func (s OrderStatus) Terminal() bool {
	return s == StatusRejected || s == StatusDispatched
}

// Order representa el pedido de un cliente sobre un libro del catálogo.
// La instantánea del libro (título, autor, precio) se captura en el momento
// de la aceptación y es inmutable después; un pedido rechazado no lleva
// instantánea de precio.
type Order struct {
	ID         int64       `json:"id"`
	ISBN       string      `json:"isbn"`
	Quantity   int         `json:"quantity"`
	BookTitle  string      `json:"book_title,omitempty"`
	BookAuthor string      `json:"book_author,omitempty"`
	BookPrice  float64     `json:"book_price,omitempty"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Version    int64       `json:"version"`
}

func (o *Order) PartitionKey() string {
	return strconv.FormatInt(o.ID, 10)
}

// --- Métodos de dominio ---

// Dispatch aplica la transición ACCEPTED → DISPATCHED. Sobre un estado
// terminal es un no-op idempotente y devuelve false.
func (o *Order) Dispatch() bool {
	if o.Status != StatusAccepted {
		return false
	}
	o.Status = StatusDispatched
	o.UpdatedAt = time.Now().UTC()
	return true
}

// BuildAcceptedOrder construye un pedido aceptado con la instantánea del
// libro que confirmó el catálogo.
func BuildAcceptedOrder(isbn string, quantity int, book BookInfo) *Order {
	now := time.Now().UTC()
	return &Order{
		ISBN:       isbn,
		Quantity:   quantity,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
		BookPrice:  book.Price,
		Status:     StatusAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
	}
}

// BuildRejectedOrder construye un pedido rechazado, sin instantánea.
func BuildRejectedOrder(isbn string, quantity int) *Order {
	now := time.Now().UTC()
	return &Order{
		ISBN:      isbn,
		Quantity:  quantity,
		Status:    StatusRejected,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Verificación estática
var _ sharedBus.Keyer = (*Order)(nil)
