package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_commerce/internal/mediator"
)

// Options configures InitRoutes.
type Options struct {
	Logger *zap.Logger
	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
	// Ready backs GET /ready when set.
	Ready func(context.Context) error
}

// InitRoutes registers every endpoint on e. Handlers translate HTTP to
// mediator requests and nothing else.
func InitRoutes(e *gin.Engine, m *mediator.Mediator, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Use(RequestID(), AccessLog(logger.Named("http")))

	customers := newCustomersHandler(m, logger)
	products := newProductsHandler(m, logger)
	sales := NewSalesHandler(m, logger)

	e.POST("/customers", customers.handleRegister)
	e.GET("/customers", customers.handleList)
	e.GET("/customers/:tax_id", customers.handleGetByTaxID)
	e.PATCH("/customers/:id", customers.handleEdit)
	e.GET("/customers/:tax_id/sales", sales.handleCustomerSales)

	e.POST("/products", products.handleRegister)
	e.GET("/products", products.handleList)
	e.GET("/products/:sku", products.handleGetBySKU)
	e.PATCH("/products/:id", products.handleEdit)

	e.POST("/sales", sales.handleCreateSale)
	e.GET("/sales", sales.handleListSales)
	e.GET("/sales/:id", sales.handleGetSale)

	e.GET("/reports/sales.csv", sales.handleSalesReport)

	if opts.Metrics != nil {
		e.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	if opts.Ready != nil {
		e.GET("/ready", func(c *gin.Context) {
			if err := opts.Ready(c.Request.Context()); err != nil {
				logger.Warn("store not ready", zap.String("request_id", requestID(c)), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
		})
	}
}
