package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
	"api_commerce/internal/sales"
)

const defaultPerPage = 10

// salesHandler implements the HTTP handlers for sales operations.
type salesHandler struct {
	mediator *mediator.Mediator
	logger   *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(m *mediator.Mediator, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		mediator: m,
		logger:   logger,
	}
}

// handleCreateSale handles the POST /sales endpoint.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.RegisterSaleCommand
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, h.logger, "invalid request payload", err)
		return
	}

	out, err := mediator.Send[sales.RegisterSaleOutput](ctx.Request.Context(), h.mediator, req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, out)
}

func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	id, ok := idParam(ctx, h.logger)
	if !ok {
		return
	}

	view, err := mediator.Send[sales.SaleView](ctx.Request.Context(), h.mediator, sales.GetSaleByIDQuery{SaleID: id})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (h *salesHandler) handleListSales(ctx *gin.Context) {
	p, ok := paginationQuery(ctx, h.logger)
	if !ok {
		return
	}

	page, err := mediator.Send[pagination.Result[sales.SaleView]](ctx.Request.Context(), h.mediator, sales.GetSalesQuery{Pagination: p})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, page)
}

func (h *salesHandler) handleCustomerSales(ctx *gin.Context) {
	views, err := mediator.Send[[]sales.SaleView](ctx.Request.Context(), h.mediator,
		sales.GetSalesByCustomerQuery{TaxID: ctx.Param("tax_id")})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": views, "quantity": len(views)})
}

// handleSalesReport streams every sale as CSV.
func (h *salesHandler) handleSalesReport(ctx *gin.Context) {
	rows, err := mediator.Send[[]sales.ReportRow](ctx.Request.Context(), h.mediator, sales.GenerateSalesReportQuery{})
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", `attachment; filename="report.csv"`)
	ctx.Status(http.StatusOK)
	if err := writeSalesReport(ctx.Writer, rows); err != nil {
		h.logger.Error("failed to write sales report", zap.String("request_id", requestID(ctx)), zap.Error(err))
	}
}

// idParam parses the :id path segment as a positive integer.
func idParam(ctx *gin.Context, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(ctx, logger, "id must be a positive integer", err)
		return 0, false
	}
	return id, true
}

// paginationQuery binds ?page=&per_page=, defaulting to the first page.
func paginationQuery(ctx *gin.Context, logger *zap.Logger) (pagination.Pagination, bool) {
	p := pagination.Pagination{Page: 1, PerPage: defaultPerPage}
	if err := ctx.ShouldBindQuery(&p); err != nil {
		badRequest(ctx, logger, "page and per_page must be integers", err)
		return pagination.Pagination{}, false
	}
	return p, true
}
