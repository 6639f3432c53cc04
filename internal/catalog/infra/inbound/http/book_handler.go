package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/libreria/internal/catalog/application"
	"github.com/davicafu/libreria/internal/catalog/domain"
)

// BookHandler encapsula los endpoints HTTP del catálogo
type BookHandler struct {
	service *application.CatalogService
}

// NewBookHandler crea un nuevo BookHandler
func NewBookHandler(service *application.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

// ---------------- Handlers ----------------

// AddBook endpoint POST /books
func (h *BookHandler) AddBook(c *gin.Context) {
	var req struct {
		ISBN   string  `json:"isbn" binding:"required"`
		Title  string  `json:"title" binding:"required"`
		Author string  `json:"author" binding:"required"`
		Price  float64 `json:"price" binding:"required,gt=0"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.service.AddBook(c.Request.Context(), req.ISBN, req.Title, req.Author, req.Price)
	if err != nil {
		if errors.Is(err, domain.ErrBookAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "book already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, book)
}

// GetBook endpoint GET /books/:isbn
func (h *BookHandler) GetBook(c *gin.Context) {
	book, err := h.service.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

// UpdateBook endpoint PUT /books/:isbn
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req struct {
		Title  *string  `json:"title,omitempty"`
		Author *string  `json:"author,omitempty"`
		Price  *float64 `json:"price,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Price != nil {
		book.Price = *req.Price
	}

	if err := h.service.UpdateBook(c.Request.Context(), book); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook endpoint DELETE /books/:isbn
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.service.RemoveBook(c.Request.Context(), c.Param("isbn")); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBooks endpoint GET /books
func (h *BookHandler) ListBooks(c *gin.Context) {
	books, err := h.service.ListBooks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, books)
}
