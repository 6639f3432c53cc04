package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/libreria/internal/order/domain"
	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
)

type OrderRepoPostgres struct {
	db *sql.DB
}

func NewOrderRepoPostgres(db *sql.DB) *OrderRepoPostgres {
	return &OrderRepoPostgres{db: db}
}

// ------------------ Helper DRY para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt *sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, false)`,
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, payloadBytes, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// ------------------ CRUD + Outbox ------------------

// Create inserta pedido y evento en transacción
func (r *OrderRepoPostgres) Create(ctx context.Context, o *domain.Order, buildEvt func(*domain.Order) *sharedDomain.OutboxEvent) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (isbn, quantity, book_title, book_author, book_price, status, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		o.ISBN, o.Quantity, o.BookTitle, o.BookAuthor, o.BookPrice, string(o.Status), o.CreatedAt, o.UpdatedAt, o.Version,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	o.ID = id

	if buildEvt != nil {
		if evt := buildEvt(o); evt != nil {
			if err = insertOutboxTx(ctx, tx, evt); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateStatus aplica la actualización optimista con chequeo de versión.
func (r *OrderRepoPostgres) UpdateStatus(ctx context.Context, id int64, expectedVersion int64, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2, version=version+1 WHERE id=$3 AND version=$4`,
		string(status), time.Now().UTC(), id, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrOrderNotFound
		}
		return domain.ErrVersionConflict
	}

	return nil
}

// GetByID devuelve el pedido o ErrOrderNotFound.
func (r *OrderRepoPostgres) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, isbn, quantity, book_title, book_author, book_price, status, created_at, updated_at, version
		 FROM orders WHERE id = $1`, id)

	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.ISBN, &o.Quantity, &o.BookTitle, &o.BookAuthor, &o.BookPrice,
		&status, &o.CreatedAt, &o.UpdatedAt, &o.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// List devuelve todos los pedidos, los más recientes primero.
func (r *OrderRepoPostgres) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, isbn, quantity, book_title, book_author, book_price, status, created_at, updated_at, version
		 FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.ISBN, &o.Quantity, &o.BookTitle, &o.BookAuthor, &o.BookPrice,
			&status, &o.CreatedAt, &o.UpdatedAt, &o.Version); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

// ------------------ Outbox ------------------

func (r *OrderRepoPostgres) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		 FROM outbox WHERE processed = false ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []sharedDomain.OutboxEvent
	for rows.Next() {
		var evt sharedDomain.OutboxEvent
		var payloadBytes []byte
		if err := rows.Scan(&evt.ID, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payloadBytes, &evt.CreatedAt); err != nil {
			return nil, err
		}
		evt.Payload = json.RawMessage(payloadBytes)
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *OrderRepoPostgres) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET processed = true WHERE id = $1`, id)
	return err
}

// InitPostgres crea las tablas si no existen.
func InitPostgres(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          BIGSERIAL PRIMARY KEY,
		isbn        TEXT NOT NULL,
		quantity    INTEGER NOT NULL,
		book_title  TEXT NOT NULL DEFAULT '',
		book_author TEXT NOT NULL DEFAULT '',
		book_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		version     BIGINT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS outbox (
		id             UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		processed      BOOLEAN NOT NULL DEFAULT false
	);`
	_, err := db.Exec(schema)
	return err
}

// Verificación estática
var _ domain.OrderRepository = (*OrderRepoPostgres)(nil)
