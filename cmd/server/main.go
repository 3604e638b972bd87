package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/api"
	"github.com/sentientiq/collective/internal/config"
	"github.com/sentientiq/collective/internal/engine"
	"github.com/sentientiq/collective/internal/provider"
	"github.com/sentientiq/collective/internal/retrieval"
	"github.com/sentientiq/collective/internal/store"
)

func main() {
	cfg := config.Load()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	pg, err := store.NewPgStore(cfg.PgConn, cfg.EmbedDim)
	if err != nil {
		logger.Fatalw("postgres connect failed", "err", err)
	}

	fast := provider.NewClient(provider.RoleFast, cfg.Fast, logger)
	primary := provider.NewClient(provider.RolePrimary, cfg.Primary, logger)
	precision := provider.NewClient(provider.RolePrecision, cfg.Precision, logger)
	embedder := provider.NewEmbedder(cfg.Fast, cfg.EmbedModel)

	pools := provider.NewPools(
		cfg.Fast.MaxInFlight,
		cfg.Primary.MaxInFlight,
		cfg.Precision.MaxInFlight,
	)

	retriever := retrieval.New(embedder, pg, logger)
	eng := engine.New(fast, primary, precision, pools, retriever, cfg.ContextBudget, logger)

	app := fiber.New(fiber.Config{
		AppName:               cfg.Version,
		DisableStartupMessage: true,
	})
	api.RegisterRoutes(app, api.NewHandler(eng, embedder, pg, cfg, logger))

	logger.Infow("server started", "addr", cfg.ServerAddr, "version", cfg.Version)
	if err := app.Listen(cfg.ServerAddr); err != nil {
		logger.Fatalw("server stopped", "err", err)
	}
}
