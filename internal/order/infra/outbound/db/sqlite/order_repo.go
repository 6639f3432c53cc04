package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/libreria/internal/order/domain"
	sharedDomain "github.com/davicafu/libreria/internal/shared/domain"
)

type OrderRepoSQLite struct {
	db *sql.DB
}

func NewOrderRepoSQLite(db *sql.DB) *OrderRepoSQLite {
	return &OrderRepoSQLite{db: db}
}

// ------------------ Helper DRY para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt *sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id,aggregate_type,aggregate_id,event_type,payload,created_at,processed)
		 VALUES (?,?,?,?,?,?,0)`,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payloadBytes), evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return nil
}

// ------------------ Métodos ------------------

// Create inserta el pedido y, si procede, su evento en la misma transacción.
// El id generado se asigna al pedido antes de construir el evento, de modo
// que el payload lleva el id definitivo.
func (r *OrderRepoSQLite) Create(ctx context.Context, o *domain.Order, buildEvt func(*domain.Order) *sharedDomain.OutboxEvent) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (isbn,quantity,book_title,book_author,book_price,status,created_at,updated_at,version)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		o.ISBN, o.Quantity, o.BookTitle, o.BookAuthor, o.BookPrice, string(o.Status), o.CreatedAt, o.UpdatedAt, o.Version,
	)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
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

// UpdateStatus aplica la actualización optimista: solo escribe si la versión
// coincide. Distingue entre pedido inexistente y conflicto de versión.
func (r *OrderRepoSQLite) UpdateStatus(ctx context.Context, id int64, expectedVersion int64, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=?, updated_at=?, version=version+1 WHERE id=? AND version=?`,
		string(status), time.Now().UTC(), id, expectedVersion,
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM orders WHERE id=?`, id).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrOrderNotFound
		}
		return domain.ErrVersionConflict
	}

	return nil
}

// GetByID devuelve el pedido o ErrOrderNotFound.
func (r *OrderRepoSQLite) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, isbn, quantity, book_title, book_author, book_price, status, created_at, updated_at, version
		 FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// List devuelve todos los pedidos, los más recientes primero.
func (r *OrderRepoSQLite) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, isbn, quantity, book_title, book_author, book_price, status, created_at, updated_at, version
		 FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.ISBN, &o.Quantity, &o.BookTitle, &o.BookAuthor, &o.BookPrice,
		&status, &o.CreatedAt, &o.UpdatedAt, &o.Version); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// ------------------ Outbox ------------------

func (r *OrderRepoSQLite) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		 FROM outbox WHERE processed = 0 ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []sharedDomain.OutboxEvent
	for rows.Next() {
		var evt sharedDomain.OutboxEvent
		var idStr, payloadStr string
		if err := rows.Scan(&idStr, &evt.AggregateType, &evt.AggregateID, &evt.EventType, &payloadStr, &evt.CreatedAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid outbox event id %q: %w", idStr, err)
		}
		evt.ID = id
		evt.Payload = json.RawMessage(payloadStr)
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *OrderRepoSQLite) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET processed = 1 WHERE id = ?`, id.String())
	return err
}

// InitSQLite crea las tablas si no existen.
func InitSQLite(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		isbn        TEXT NOT NULL,
		quantity    INTEGER NOT NULL,
		book_title  TEXT NOT NULL DEFAULT '',
		book_author TEXT NOT NULL DEFAULT '',
		book_price  REAL NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL,
		version     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS outbox (
		id             TEXT PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        TEXT NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		processed      INTEGER NOT NULL DEFAULT 0
	);`
	_, err := db.Exec(schema)
	return err
}

// Verificación estática
var _ domain.OrderRepository = (*OrderRepoSQLite)(nil)
