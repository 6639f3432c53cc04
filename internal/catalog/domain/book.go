package domain

import (
	"context"
	"errors"
	"time"
)

// ---------- Errores de dominio ----------
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookAlreadyExists = errors.New("book already exists")
	ErrInvalidBook       = errors.New("invalid book")
)

// Book representa un libro del catálogo, identificado por su ISBN.
type Book struct {
	ID        int64     `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate comprueba los invariantes mínimos del libro.
func (b *Book) Validate() error {
	if b.ISBN == "" || b.Title == "" || b.Author == "" || b.Price < 0 {
		return ErrInvalidBook
	}
	return nil
}

// ---------- Interfaces (Ports) ----------

// BookRepository define las operaciones persistentes para Book.
type BookRepository interface {
	// Debe devolver ErrBookAlreadyExists si ya hay un libro con ese ISBN.
	Create(ctx context.Context, b *Book) error

	// Debe devolver ErrBookNotFound si no existe.
	GetByISBN(ctx context.Context, isbn string) (*Book, error)

	// Debe devolver ErrBookNotFound si no existe.
	Update(ctx context.Context, b *Book) error

	// Debe devolver ErrBookNotFound si no existe.
	DeleteByISBN(ctx context.Context, isbn string) error

	// List devuelve todos los libros del catálogo.
	List(ctx context.Context) ([]*Book, error)
}
