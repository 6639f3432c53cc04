package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrVersionConflict      = errors.New("order version conflict")
	ErrBookNotFound         = errors.New("book not found in catalog")
	ErrAnalyticsUnavailable = errors.New("order analytics not configured")
)

// BookInfo es la vista del catálogo que necesita el pedido: disponibilidad
// más la instantánea de metadatos que se congela al aceptar.
type BookInfo struct {
	ISBN   string  `json:"isbn"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Price  float64 `json:"price"`
}

// ---------- Interfaces (Ports) ----------

// BookCatalog consulta la disponibilidad de un libro en el catálogo.
// Debe devolver ErrBookNotFound si el libro no existe; un timeout o un
// fallo de red se propagan como error y el caller los trata como rechazo.
type BookCatalog interface {
	Lookup(ctx context.Context, isbn string) (*BookInfo, error)
}

// OrderRepository define las operaciones persistentes para Order.
type OrderRepository interface {
	// Create inserta el pedido y asigna su id generado. Si buildEvt no es
	// nil se invoca con el pedido ya identificado y el evento resultante se
	// inserta en la tabla outbox dentro de la misma transacción.
	Create(ctx context.Context, o *Order, buildEvt func(*Order) *sharedDomain.OutboxEvent) (int64, error)

	// Debe devolver ErrOrderNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Order, error)

	// UpdateStatus aplica un read-modify-write optimista: solo escribe si la
	// versión actual coincide con expectedVersion. Debe devolver
	// ErrVersionConflict en caso de desajuste y ErrOrderNotFound si el
	// pedido no existe.
	UpdateStatus(ctx context.Context, id int64, expectedVersion int64, status OrderStatus) error

	// List devuelve todos los pedidos, los más recientes primero.
	List(ctx context.Context) ([]*Order, error)

	// El repositorio expone además la tabla outbox para el relayer.
	sharedDomain.OutboxRepository
}

// DailyOrderTrend es una fila de la serie diaria de pedidos por resultado.
type DailyOrderTrend struct {
	Day        time.Time `json:"day"`
	Accepted   uint64    `json:"accepted"`
	Rejected   uint64    `json:"rejected"`
	Dispatched uint64    `json:"dispatched"`
}

// OrderAnalytics registra cambios de estado en el almacén analítico y sirve
// la serie diaria. La escritura es best-effort: un fallo aquí nunca afecta al
// flujo del pedido.
type OrderAnalytics interface {
	LogStatusChange(ctx context.Context, o *Order, eventType string) error
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyOrderTrend, error)
}

// ---------- Helpers comunes ----------

// CacheKeyByISBN forma una key consistente para cachear consultas al catálogo.
func CacheKeyByISBN(isbn string) string {
	return fmt.Sprintf("book:isbn:%s", isbn)
}
