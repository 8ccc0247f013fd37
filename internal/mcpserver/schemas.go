package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func registerSaleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "register_sale",
		Description: "Register a sale for a customer, decrementing product stock atomically",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"customer_tax_id": map[string]interface{}{
					"type":        "string",
					"description": "Tax id of a registered customer",
				},
				"items": map[string]interface{}{
					"type":        "array",
					"description": "Products sold, each SKU at most once",
					"minItems":    1,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"sku":      map[string]interface{}{"type": "string"},
							"quantity": map[string]interface{}{"type": "integer", "minimum": 1},
						},
						"required": []string{"sku", "quantity"},
					},
				},
			},
			Required: []string{"customer_tax_id", "items"},
		},
	}
}

func getSaleTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_sale",
		Description: "Get a sale with its customer and product lines",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Sale id",
					"minimum":     1,
				},
			},
			Required: []string{"id"},
		},
	}
}

func listSalesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_sales",
		Description: "List sales, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page": map[string]interface{}{
					"type":    "integer",
					"default": 1,
					"minimum": 1,
				},
				"per_page": map[string]interface{}{
					"type":    "integer",
					"default": 10,
					"minimum": 1,
				},
			},
		},
	}
}

func customerSalesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "customer_sales",
		Description: "List every sale of a customer, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tax_id": map[string]interface{}{
					"type":        "string",
					"description": "Customer tax id",
				},
			},
			Required: []string{"tax_id"},
		},
	}
}
