package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/catalog/domain"
)

// CatalogService define los casos de uso del catálogo de libros.
type CatalogService struct {
	repo domain.BookRepository
	log  *zap.Logger
}

// NewCatalogService constructor
func NewCatalogService(repo domain.BookRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo: repo,
		log:  log,
	}
}

func (s *CatalogService) AddBook(ctx context.Context, isbn, title, author string, price float64) (*domain.Book, error) {
	book := &domain.Book{
		ISBN:      isbn,
		Title:     title,
		Author:    author,
		Price:     price,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.log.Info("Libro añadido al catálogo", zap.String("isbn", isbn), zap.String("title", title))
	return book, nil
}

// GetBook obtiene un libro por ISBN.
func (s *CatalogService) GetBook(ctx context.Context, isbn string) (*domain.Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

func (s *CatalogService) UpdateBook(ctx context.Context, b *domain.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, b)
}

func (s *CatalogService) RemoveBook(ctx context.Context, isbn string) error {
	return s.repo.DeleteByISBN(ctx, isbn)
}

// ListBooks devuelve todos los libros del catálogo.
func (s *CatalogService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.repo.List(ctx)
}
