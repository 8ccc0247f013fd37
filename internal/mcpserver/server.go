// Package mcpserver exposes the sales use cases as MCP tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"api_commerce/internal/mediator"
)

const (
	ServerName    = "commerce-sales"
	ServerVersion = "1.0.0"
)

// Server wraps an MCP server whose tools dispatch through a Mediator.
type Server struct {
	mcp      *server.MCPServer
	mediator *mediator.Mediator
	logger   *zap.Logger
}

// New creates a Server with every tool registered.
func New(m *mediator.Mediator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		mediator: m,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// ServeStdio serves MCP on stdin/stdout until the input is closed.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(registerSaleTool(), s.handleRegisterSale)
	s.mcp.AddTool(getSaleTool(), s.handleGetSale)
	s.mcp.AddTool(listSalesTool(), s.handleListSales)
	s.mcp.AddTool(customerSalesTool(), s.handleCustomerSales)
}
