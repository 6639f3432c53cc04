package mocks

import (
	"context"
	"sync"
	"time"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
)

// AnalyticsEntry es una fila registrada por RecordingAnalytics.
type AnalyticsEntry struct {
	Order     orderDomain.Order
	EventType string
}

// RecordingAnalytics simula OrderAnalytics guardando las filas en memoria.
type RecordingAnalytics struct {
	Entries []AnalyticsEntry
	Trend   []orderDomain.DailyOrderTrend
	Err     error
	mu      sync.Mutex
}

func (a *RecordingAnalytics) LogStatusChange(ctx context.Context, o *orderDomain.Order, eventType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.Entries = append(a.Entries, AnalyticsEntry{Order: *o, EventType: eventType})
	return nil
}

func (a *RecordingAnalytics) GetDailyTrend(ctx context.Context, start, end time.Time) ([]orderDomain.DailyOrderTrend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	out := make([]orderDomain.DailyOrderTrend, len(a.Trend))
	copy(out, a.Trend)
	return out, nil
}

// Recorded devuelve una copia de las filas registradas.
func (a *RecordingAnalytics) Recorded() []AnalyticsEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AnalyticsEntry, len(a.Entries))
	copy(out, a.Entries)
	return out
}

// Verificación estática
var _ orderDomain.OrderAnalytics = (*RecordingAnalytics)(nil)
