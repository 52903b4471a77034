package main

import (
	"context"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/veritalabs/supplement-verifier/internal/app"
	"github.com/veritalabs/supplement-verifier/internal/attestation"
	"github.com/veritalabs/supplement-verifier/internal/chain"
	"github.com/veritalabs/supplement-verifier/internal/data/repos"
	"github.com/veritalabs/supplement-verifier/internal/db"
	apphttp "github.com/veritalabs/supplement-verifier/internal/http"
	"github.com/veritalabs/supplement-verifier/internal/http/handlers"
	"github.com/veritalabs/supplement-verifier/internal/http/middleware"
	"github.com/veritalabs/supplement-verifier/internal/platform/llm"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
	"github.com/veritalabs/supplement-verifier/internal/platform/observability"
	"github.com/veritalabs/supplement-verifier/internal/platform/pdftext"
	"github.com/veritalabs/supplement-verifier/internal/services"
)

func main() {
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("Starting supplement-verifier", "env", cfg.Env)

	ctx := context.Background()
	if shutdown := observability.Init(ctx, logg, observability.Config{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.ServiceVersion,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		Headers:     cfg.OtelHeaders,
		SampleRatio: cfg.OtelSampleRatio,
	}); shutdown != nil {
		defer func() {
			if err := shutdown(ctx); err != nil {
				logg.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	dbService, err := db.New(cfg.DBDriver, cfg.DatabaseURL, logg)
	if err != nil {
		logg.Fatal("Failed to connect to database", "error", err)
	}
	if !cfg.IsProduction() {
		if err := dbService.AutoMigrateAll(); err != nil {
			logg.Fatal("Failed to migrate database", "error", err)
		}
	}
	gdb := dbService.DB()

	batchRepo := repos.NewBatchRepo(gdb, logg)
	documentRepo := repos.NewDocumentRepo(gdb, logg)
	extractionRepo := repos.NewExtractionRepo(gdb, logg)

	registry, err := chain.Singleton(chain.Config{
		Mode:            cfg.ChainMode,
		ChainName:       cfg.ChainName,
		RPCURL:          cfg.ChainRPCURL,
		ContractAddress: cfg.ContractAddress,
		ChainID:         cfg.ChainID,
		PrivateKey:      cfg.PublisherPrivateKey,
	}, logg)
	if err != nil {
		logg.Fatal("Failed to initialize chain registry", "error", err)
	}

	var fieldExtractor services.FieldExtractor
	switch strings.ToLower(cfg.LLMProvider) {
	case "", "mock":
		logg.Info("Using mock field extractor")
		fieldExtractor = services.NewMockFieldExtractor()
	default:
		llmClient, err := llm.NewClient(llm.Config{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
		}, logg)
		if err != nil {
			logg.Fatal("Failed to initialize LLM client", "error", err)
		}
		fieldExtractor = services.NewLLMFieldExtractor(llmClient, cfg.LLMModel, logg)
	}

	builder := attestation.NewBuilder(cfg.SchemaVersion)

	batchService := services.NewBatchService(gdb, logg, batchRepo)
	documentService := services.NewDocumentService(gdb, logg, batchRepo, documentRepo)
	extractionService := services.NewExtractionService(gdb, logg, batchRepo, documentRepo, extractionRepo, pdftext.NewExtractor(), fieldExtractor)
	attestationService := services.NewAttestationService(gdb, logg, batchRepo, extractionRepo, builder)
	publishService := services.NewPublishService(gdb, logg, batchRepo, extractionRepo, builder, registry, cfg.ChainName)
	verifyService := services.NewVerifyService(gdb, logg, batchRepo, extractionRepo, builder, registry)

	if cfg.AdminAPIKey == "" {
		logg.Warn("ADMIN_API_KEY is not set; admin routes will reject all requests")
	}

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:                logg,
		ServiceName:        cfg.ServiceName,
		Auth:               middleware.NewAuthMiddleware(logg, cfg.AdminAPIKey),
		HealthHandler:      handlers.NewHealthHandler(),
		BatchHandler:       handlers.NewBatchHandler(logg, batchService),
		DocumentHandler:    handlers.NewDocumentHandler(logg, documentService),
		ExtractionHandler:  handlers.NewExtractionHandler(logg, extractionService),
		AttestationHandler: handlers.NewAttestationHandler(logg, attestationService, publishService),
		VerifyHandler:      handlers.NewVerifyHandler(logg, verifyService),
	})

	server := apphttp.NewServer(router, logg)
	if err := server.Run(":" + cfg.Port); err != nil {
		logg.Fatal("HTTP server exited", "error", err)
	}
}
