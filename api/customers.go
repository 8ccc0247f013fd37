package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_commerce/internal/customers"
	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
)

type customersHandler struct {
	mediator *mediator.Mediator
	logger   *zap.Logger
}

func newCustomersHandler(m *mediator.Mediator, logger *zap.Logger) *customersHandler {
	return &customersHandler{mediator: m, logger: logger}
}

func (h *customersHandler) handleRegister(ctx *gin.Context) {
	var req customers.RegisterCustomerCommand
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, "invalid request payload", err)
		return
	}

	out, err := mediator.Send[customers.RegisterCustomerOutput](ctx.Request.Context(), h.mediator, req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}

func (h *customersHandler) handleEdit(ctx *gin.Context) {
	id, ok := idParam(ctx, h.logger)
	if !ok {
		return
	}
	var req customers.EditCustomerCommand
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, "invalid request payload", err)
		return
	}
	req.CustomerID = id

	view, err := mediator.Send[customers.CustomerView](ctx.Request.Context(), h.mediator, req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *customersHandler) handleGetByTaxID(ctx *gin.Context) {
	view, err := mediator.Send[customers.CustomerView](ctx.Request.Context(), h.mediator,
		customers.GetCustomerByTaxIDQuery{TaxID: ctx.Param("tax_id")})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *customersHandler) handleList(ctx *gin.Context) {
	p, ok := paginationQuery(ctx, h.logger)
	if !ok {
		return
	}
	page, err := mediator.Send[pagination.Result[customers.CustomerView]](ctx.Request.Context(), h.mediator,
		customers.GetCustomersQuery{Pagination: p})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}
