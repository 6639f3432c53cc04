package catalog

import (
	"context"
	"errors"

	catalogApp "github.com/davicafu/libreria/internal/catalog/application"
	catalogDomain "github.com/davicafu/libreria/internal/catalog/domain"
	"github.com/davicafu/libreria/internal/order/domain"
)

// LocalCatalogClient consulta el catálogo en proceso, sin pasar por la red.
// Es el colaborador por defecto cuando no hay un servicio de catálogo
// externo configurado.
type LocalCatalogClient struct {
	service *catalogApp.CatalogService
}

func NewLocalCatalogClient(service *catalogApp.CatalogService) *LocalCatalogClient {
	return &LocalCatalogClient{service: service}
}

func (c *LocalCatalogClient) Lookup(ctx context.Context, isbn string) (*domain.BookInfo, error) {
	book, err := c.service.GetBook(ctx, isbn)
	if err != nil {
		if errors.Is(err, catalogDomain.ErrBookNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}

	return &domain.BookInfo{
		ISBN:   book.ISBN,
		Title:  book.Title,
		Author: book.Author,
		Price:  book.Price,
	}, nil
}

// Verificación estática
var _ domain.BookCatalog = (*LocalCatalogClient)(nil)
