package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"api_commerce/internal/apperror"
	"api_commerce/internal/mediator"
	"api_commerce/internal/pagination"
	"api_commerce/internal/sales"
)

const defaultPerPage = 10

func (s *Server) handleRegisterSale(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	taxID, _ := args["customer_tax_id"].(string)
	rawItems, ok := args["items"].([]interface{})
	if !ok {
		return toolError(apperror.Validation("items must be an array")), nil
	}

	cmd := sales.RegisterSaleCommand{CustomerTaxID: taxID, Items: make([]sales.SaleItem, 0, len(rawItems))}
	for i, raw := range rawItems {
		item, ok := raw.(map[string]interface{})
		if !ok {
			return toolError(apperror.Validation("items[%d] must be an object", i)), nil
		}
		sku, _ := item["sku"].(string)
		qty, err := intArg(item, "quantity", 0)
		if err != nil {
			return toolError(err), nil
		}
		cmd.Items = append(cmd.Items, sales.SaleItem{SKU: sku, Quantity: int(qty)})
	}

	out, err := mediator.Send[sales.RegisterSaleOutput](ctx, s.mediator, cmd)
	if err != nil {
		return s.failure("register_sale", err), nil
	}
	return jsonResult(out)
}

func (s *Server) handleGetSale(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := intArg(arguments(request), "id", 0)
	if err != nil {
		return toolError(err), nil
	}

	view, err := mediator.Send[sales.SaleView](ctx, s.mediator, sales.GetSaleByIDQuery{SaleID: id})
	if err != nil {
		return s.failure("get_sale", err), nil
	}
	return jsonResult(view)
}

func (s *Server) handleListSales(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	page, err := intArg(args, "page", 1)
	if err != nil {
		return toolError(err), nil
	}
	perPage, err := intArg(args, "per_page", defaultPerPage)
	if err != nil {
		return toolError(err), nil
	}

	res, err := mediator.Send[pagination.Result[sales.SaleView]](ctx, s.mediator, sales.GetSalesQuery{
		Pagination: pagination.Pagination{Page: int(page), PerPage: int(perPage)},
	})
	if err != nil {
		return s.failure("list_sales", err), nil
	}
	return jsonResult(res)
}

func (s *Server) handleCustomerSales(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taxID, _ := arguments(request)["tax_id"].(string)

	views, err := mediator.Send[[]sales.SaleView](ctx, s.mediator, sales.GetSalesByCustomerQuery{TaxID: taxID})
	if err != nil {
		return s.failure("customer_sales", err), nil
	}
	return jsonResult(map[string]interface{}{"results": views, "quantity": len(views)})
}

// failure turns a use case error into a tool error result. Internal causes
// are logged and not exposed.
func (s *Server) failure(tool string, err error) *mcp.CallToolResult {
	if apperror.KindOf(err) == apperror.KindInternal {
		s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	}
	return toolError(err)
}

func toolError(err error) *mcp.CallToolResult {
	kind := apperror.KindOf(err)
	msg := apperror.MessageOf(err)
	if kind == apperror.KindInternal {
		msg = "internal error"
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", kind, msg))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integral JSON number. Missing keys yield def.
func intArg(args map[string]interface{}, key string, def int64) (int64, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	f, ok := raw.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, apperror.Validation("%s must be an integer", key)
	}
	return int64(f), nil
}
