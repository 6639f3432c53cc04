package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/libreria/internal/order/domain"
	sharedCache "github.com/davicafu/libreria/internal/shared/platform/cache"
	sharedUtils "github.com/davicafu/libreria/internal/shared/utils"
)

// HTTPCatalogClient consulta el servicio de catálogo por HTTP con timeout
// acotado, circuit breaker y caché de corta vida delante. Para el caller
// cualquier fallo (timeout, red, breaker abierto) acaba como error y el
// motor de aceptación lo trata como rechazo.
type HTTPCatalogClient struct {
	baseURL string
	client  *http.Client
	breaker *sharedUtils.Breaker
	cache   sharedCache.Cache // puede ser nil
	ttlSecs int
	log     *zap.Logger
}

func NewHTTPCatalogClient(baseURL string, timeout time.Duration, cache sharedCache.Cache, cacheTTL time.Duration, log *zap.Logger) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: sharedUtils.NewBreaker(5, 10*time.Second),
		cache:   cache,
		ttlSecs: int(cacheTTL.Seconds()),
		log:     log,
	}
}

func (c *HTTPCatalogClient) Lookup(ctx context.Context, isbn string) (*domain.BookInfo, error) {
	// 1. Intentar cache
	if c.cache != nil {
		var book domain.BookInfo
		if ok, _ := c.cache.Get(ctx, domain.CacheKeyByISBN(isbn), &book); ok {
			return &book, nil
		}
	}

	// 2. Ir al catálogo protegidos por el breaker
	var book *domain.BookInfo
	err := c.breaker.Execute(func() error {
		var err error
		book, err = c.fetch(ctx, isbn)
		if err == domain.ErrBookNotFound {
			// Un "no existe" es una respuesta válida del catálogo,
			// no cuenta como fallo del servicio.
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	if c.cache != nil {
		go func(b domain.BookInfo) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			if err := c.cache.Set(ctxCache, domain.CacheKeyByISBN(b.ISBN), b, c.ttlSecs); err != nil {
				c.log.Warn("⚠️ Cache update failed for book", zap.String("isbn", b.ISBN), zap.Error(err))
			}
		}(*book)
	}

	return book, nil
}

func (c *HTTPCatalogClient) fetch(ctx context.Context, isbn string) (*domain.BookInfo, error) {
	url := fmt.Sprintf("%s/books/%s", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var book domain.BookInfo
		if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
			return nil, fmt.Errorf("failed to decode catalog response: %w", err)
		}
		return &book, nil
	case http.StatusNotFound:
		return nil, domain.ErrBookNotFound
	default:
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
}

// Verificación estática
var _ domain.BookCatalog = (*HTTPCatalogClient)(nil)
