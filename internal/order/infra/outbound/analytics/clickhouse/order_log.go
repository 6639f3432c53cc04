package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	orderDomain "github.com/davicafu/libreria/internal/order/domain"
	sharedUtils "github.com/davicafu/libreria/internal/shared/utils"
)

// OrderLogRepo registra los cambios de estado de los pedidos en ClickHouse
// para analítica. Escritura best-effort, nunca en el camino crítico.
type OrderLogRepo struct {
	db *sql.DB
}

// NewOrderLogRepo es el constructor.
func NewOrderLogRepo(addr string, dbName string) (*OrderLogRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &OrderLogRepo{db: conn}, nil
}

// LogStatusChange inserta una fila por cambio de estado. Reintenta un par
// de veces ante fallos transitorios de la conexión.
func (r *OrderLogRepo) LogStatusChange(ctx context.Context, o *orderDomain.Order, eventType string) error {
	err := sharedUtils.Retry(ctx, 3, 200*time.Millisecond, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO orders_log (order_id, isbn, quantity, status, event_type, event_time)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, o.ISBN, o.Quantity, string(o.Status), eventType, time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert order log row: %w", err)
	}
	return nil
}

// GetDailyTrend devuelve aceptados/rechazados/despachados por día.
func (r *OrderLogRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]orderDomain.DailyOrderTrend, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			countIf(event_type = 'order.accepted') AS accepted,
			countIf(event_type = 'order.rejected') AS rejected,
			countIf(event_type = 'order.dispatched') AS dispatched
		FROM orders_log
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []orderDomain.DailyOrderTrend
	for rows.Next() {
		var t orderDomain.DailyOrderTrend
		if err := rows.Scan(&t.Day, &t.Accepted, &t.Rejected, &t.Dispatched); err != nil {
			return nil, err
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *OrderLogRepo) InitSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS orders_log (
			order_id   Int64,
			isbn       String,
			quantity   Int32,
			status     String,
			event_type String,
			event_time DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (isbn, status, event_time);
	`
	_, err := r.db.Exec(query)
	return err
}

// Verificación estática de la interfaz.
var _ orderDomain.OrderAnalytics = (*OrderLogRepo)(nil)
