package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
	"api_commerce/internal/products"
)

type productsHandler struct {
	mediator *mediator.Mediator
	logger   *zap.Logger
}

func newProductsHandler(m *mediator.Mediator, logger *zap.Logger) *productsHandler {
	return &productsHandler{mediator: m, logger: logger}
}

func (h *productsHandler) handleRegister(ctx *gin.Context) {
	var req products.RegisterProductCommand
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, "invalid request payload", err)
		return
	}

	out, err := mediator.Send[products.RegisterProductOutput](ctx.Request.Context(), h.mediator, req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

func (h *productsHandler) handleEdit(ctx *gin.Context) {
	id, ok := idParam(ctx, h.logger)
	if !ok {
		return
	}
	var req products.EditProductCommand
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, "invalid request payload", err)
		return
	}
	req.ProductID = id

	view, err := mediator.Send[products.ProductView](ctx.Request.Context(), h.mediator, req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *productsHandler) handleGetBySKU(ctx *gin.Context) {
	view, err := mediator.Send[products.ProductView](ctx.Request.Context(), h.mediator,
		products.GetProductBySKUQuery{SKU: ctx.Param("sku")})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *productsHandler) handleList(ctx *gin.Context) {
	p, ok := paginationQuery(ctx, h.logger)
	if !ok {
		return
	}
	page, err := mediator.Send[pagination.Result[products.ProductView]](ctx.Request.Context(), h.mediator,
		products.GetProductsQuery{Pagination: p})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}
