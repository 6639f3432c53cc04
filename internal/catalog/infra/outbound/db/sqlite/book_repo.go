package sqlite

import (
	"context"
	"database/sql"
	"strings"

	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/davicafu/libreria/internal/catalog/domain"
)

type BookRepoSQLite struct {
	db *sql.DB
}

func NewBookRepoSQLite(db *sql.DB) *BookRepoSQLite {
	return &BookRepoSQLite{db: db}
}

func (r *BookRepoSQLite) Create(ctx context.Context, b *domain.Book) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO books (isbn,title,author,price,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		b.ISBN, b.Title, b.Author, b.Price, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrBookAlreadyExists
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BookRepoSQLite) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, isbn, title, author, price, created_at, updated_at FROM books WHERE isbn = ?`, isbn)

	var b domain.Book
	if err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Price, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookRepoSQLite) Update(ctx context.Context, b *domain.Book) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET title=?, author=?, price=?, updated_at=? WHERE isbn=?`,
		b.Title, b.Author, b.Price, b.UpdatedAt, b.ISBN,
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepoSQLite) DeleteByISBN(ctx context.Context, isbn string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE isbn=?`, isbn)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepoSQLite) List(ctx context.Context) ([]*domain.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, isbn, title, author, price, created_at, updated_at FROM books ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Price, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

// InitSQLite crea la tabla de libros si no existe.
func InitSQLite(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		isbn       TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		author     TEXT NOT NULL,
		price      REAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`
	_, err := db.Exec(schema)
	return err
}

// Verificación estática
var _ domain.BookRepository = (*BookRepoSQLite)(nil)
