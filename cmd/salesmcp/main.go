// Command salesmcp serves the sales tools over MCP on stdio. It shares the
// environment configuration of the HTTP server; logs go to stderr.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"api_commerce/internal/app"
	"api_commerce/internal/config"
	"api_commerce/internal/logger"
	"api_commerce/internal/mcpserver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(cfg.LogLevel, cfg.LogDev)
	defer func() { _ = log.Sync() }()

	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to build app", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	s := mcpserver.New(a.Mediator, log.Named("mcp"))
	if err := s.ServeStdio(); err != nil {
		log.Error("mcp server stopped", zap.Error(err))
	}
}
