package http

import "github.com/gin-gonic/gin"

func RegisterBookRoutes(r *gin.Engine, handler *BookHandler) {
	books := r.Group("/books")
	{
		books.POST("/", handler.AddBook)
		books.GET("/:isbn", handler.GetBook)
		books.GET("/", handler.ListBooks)
		books.PUT("/:isbn", handler.UpdateBook)
		books.DELETE("/:isbn", handler.DeleteBook)
	}
}
