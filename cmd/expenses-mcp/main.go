package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"expenses/internal/amqp"
	"expenses/internal/cache"
	"expenses/internal/catalog"
	"expenses/internal/config"
	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/mcptool"
	"expenses/internal/services"
	"expenses/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Stdout carries the MCP transport, so all logging goes to stderr
	logger := applog.New(applog.Config{
		Component: applog.ComponentMCP,
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	})
	applog.SetDefault(logger)

	logger.Info("Starting expenses-mcp", "version", version)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("Failed to load category catalog", "error", err, "path", cfg.CategoriesPath)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open expense store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// AMQP is optional; without it records are still durably saved
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	summaries := cache.NewLRUCache[[]core.CategoryTotal](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	service := services.NewRecordService(cat, store, publisher, summaries)
	defer func() {
		if err := service.Close(); err != nil {
			logger.Error("Failed to close record service", "error", err)
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{Name: "expenses", Version: version}, nil)
	mcptool.RegisterTools(server, service)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving MCP over stdio", "db", cfg.SQLiteDBPath)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CategoriesPath != "" {
		return catalog.LoadFile(cfg.CategoriesPath)
	}
	return catalog.LoadDefault()
}
