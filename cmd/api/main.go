package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	batchStore "github.com/harvesttrail/harvesttrail/internal/batch/store"
	"github.com/harvesttrail/harvesttrail/internal/config"
	"github.com/harvesttrail/harvesttrail/internal/database"
	"github.com/harvesttrail/harvesttrail/internal/export"
	trailHttp "github.com/harvesttrail/harvesttrail/internal/http"
	batchHandler "github.com/harvesttrail/harvesttrail/internal/http/batch"
	exportHandler "github.com/harvesttrail/harvesttrail/internal/http/export"
	importHandler "github.com/harvesttrail/harvesttrail/internal/http/importcsv"
	pricingHandler "github.com/harvesttrail/harvesttrail/internal/http/pricing"
	"github.com/harvesttrail/harvesttrail/internal/importer"
	"github.com/harvesttrail/harvesttrail/internal/pricing"
	pricingStore "github.com/harvesttrail/harvesttrail/internal/pricing/store"
	"github.com/harvesttrail/harvesttrail/internal/pubsub"
	"github.com/harvesttrail/harvesttrail/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		publisher = pubsub.New(cfg.Pusher.AppID, cfg.Pusher.Key, cfg.Pusher.Secret, cfg.Pusher.Cluster)
		tokens    = token.NewIssuer(cfg.Token.Secret, cfg.Token.TTL)

		workflow       = batch.NewWorkflow(batchStore.New(db), publisher, tokens)
		pricingService = pricing.NewService(pricingStore.New(db))
		importService  = importer.NewService()
		exportService  = export.NewService(workflow)
	)

	if err := pricingService.EnsureDefaults(context.Background()); err != nil {
		slog.Error("failed to seed price guide", "error", err)
		os.Exit(1)
	}

	var (
		batchH   = batchHandler.NewHandler(workflow)
		pricingH = pricingHandler.NewHandler(pricingService)
		importH  = importHandler.NewHandler(importService, workflow)
		exportH  = exportHandler.NewHandler(exportService)
	)

	router := trailHttp.New(batchH, pricingH, importH, exportH, cfg.CORS.AllowedOrigins)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
