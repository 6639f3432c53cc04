package mocks

import (
	"context"
	"sync"

	catalogDomain "github.com/davicafu/libreria/internal/catalog/domain"
	orderDomain "github.com/davicafu/libreria/internal/order/domain"
)

// StaticCatalog simula BookCatalog con un mapa fijo de libros.
type StaticCatalog struct {
	Books map[string]orderDomain.BookInfo
	// Err fuerza un fallo de lookup (simula timeout o red caída).
	Err error
}

func NewStaticCatalog(books ...orderDomain.BookInfo) *StaticCatalog {
	m := make(map[string]orderDomain.BookInfo, len(books))
	for _, b := range books {
		m[b.ISBN] = b
	}
	return &StaticCatalog{Books: m}
}

func (c *StaticCatalog) Lookup(ctx context.Context, isbn string) (*orderDomain.BookInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	b, ok := c.Books[isbn]
	if !ok {
		return nil, orderDomain.ErrBookNotFound
	}
	return &b, nil
}

// Verificación estática
var _ orderDomain.BookCatalog = (*StaticCatalog)(nil)

// InMemoryBookRepo simula BookRepository del catálogo.
type InMemoryBookRepo struct {
	Books  map[string]*catalogDomain.Book
	nextID int64
	mu     sync.Mutex
}

func NewInMemoryBookRepo() *InMemoryBookRepo {
	return &InMemoryBookRepo{Books: make(map[string]*catalogDomain.Book)}
}

func (r *InMemoryBookRepo) Create(ctx context.Context, b *catalogDomain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Books[b.ISBN]; ok {
		return catalogDomain.ErrBookAlreadyExists
	}
	r.nextID++
	b.ID = r.nextID
	copied := *b
	r.Books[b.ISBN] = &copied
	return nil
}

func (r *InMemoryBookRepo) GetByISBN(ctx context.Context, isbn string) (*catalogDomain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Books[isbn]
	if !ok {
		return nil, catalogDomain.ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *InMemoryBookRepo) Update(ctx context.Context, b *catalogDomain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Books[b.ISBN]; !ok {
		return catalogDomain.ErrBookNotFound
	}
	copied := *b
	r.Books[b.ISBN] = &copied
	return nil
}

func (r *InMemoryBookRepo) DeleteByISBN(ctx context.Context, isbn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Books[isbn]; !ok {
		return catalogDomain.ErrBookNotFound
	}
	delete(r.Books, isbn)
	return nil
}

func (r *InMemoryBookRepo) List(ctx context.Context) ([]*catalogDomain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*catalogDomain.Book
	for _, b := range r.Books {
		copied := *b
		list = append(list, &copied)
	}
	return list, nil
}

// Verificación estática
var _ catalogDomain.BookRepository = (*InMemoryBookRepo)(nil)
