package http

import "github.com/gin-gonic/gin"

func RegisterOrderRoutes(r *gin.Engine, handler *OrderHandler) {
	orders := r.Group("/orders")
	{
		orders.POST("/", handler.SubmitOrder)
		orders.GET("/:id", handler.GetOrder)
		orders.GET("/", handler.ListOrders)
	}

	r.GET("/analytics/orders/daily", handler.DailyTrend)
}
