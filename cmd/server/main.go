package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scentpair/backend/config"
	httpDelivery "github.com/scentpair/backend/internal/delivery/http"
	"github.com/scentpair/backend/internal/domain"
	"github.com/scentpair/backend/internal/infrastructure/cache"
	"github.com/scentpair/backend/internal/infrastructure/firecrawl"
	"github.com/scentpair/backend/internal/infrastructure/fragranceapi"
	"github.com/scentpair/backend/internal/infrastructure/llm"
	"github.com/scentpair/backend/internal/infrastructure/throttle"
	"github.com/scentpair/backend/internal/logging"
	"github.com/scentpair/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting ScentPair backend v1.0.0")

	// Initialize infrastructure dependencies
	store := cache.NewMemoryCache(map[string]cache.Policy{
		domain.NamespaceSearch:          {TTL: cfg.Cache.SearchTTL, MaxEntries: cfg.Cache.MaxEntries},
		domain.NamespaceFragrance:       {TTL: cfg.Cache.FragranceTTL, MaxEntries: cfg.Cache.MaxEntries},
		domain.NamespaceSimilar:         {TTL: cfg.Cache.SimilarTTL, MaxEntries: cfg.Cache.MaxEntries},
		domain.NamespaceScrapeSearch:    {TTL: cfg.Cache.ScrapeSearchTTL, MaxEntries: cfg.Cache.MaxEntries},
		domain.NamespaceScrapeFragrance: {TTL: cfg.Cache.ScrapeFragranceTTL, MaxEntries: cfg.Cache.MaxEntries},
	})

	catalogClient := fragranceapi.NewClient(fragranceapi.Config{
		APIKey:  cfg.Catalog.APIKey,
		BaseURL: cfg.Catalog.BaseURL,
		Host:    cfg.Catalog.Host,
		Timeout: cfg.Catalog.Timeout,
	})
	if cfg.Catalog.APIKey == "" {
		logging.Warn().Msg("catalog API key not configured; v1 lookups will report not_configured")
	}

	scrapeClient := firecrawl.NewClient(firecrawl.Config{
		APIKey:          cfg.Scrape.APIKey,
		Endpoint:        cfg.Scrape.Endpoint,
		Timeout:         cfg.Scrape.Timeout,
		MaxRetries:      cfg.Scrape.MaxRetries,
		RetryBackoff:    cfg.Scrape.RetryBackoff,
		BreakerFailures: cfg.Scrape.BreakerFailures,
		BreakerTimeout:  cfg.Scrape.BreakerTimeout,
	}, throttle.NewGate(cfg.Scrape.MinInterval))
	if cfg.Scrape.APIKey == "" {
		logging.Warn().Msg("scrape API key not configured; v2 lookups will report not_configured")
	}

	var generator domain.TextGenerator
	if client := llm.NewClient(llm.Config{
		APIKey:  cfg.Advice.APIKey,
		BaseURL: cfg.Advice.BaseURL,
		Model:   cfg.Advice.Model,
		Timeout: cfg.Advice.Timeout,
	}); client != nil {
		generator = client
		logging.Info().Str("model", cfg.Advice.Model).Msg("advice generation enabled")
	} else {
		logging.Warn().Msg("advice API key not configured; advice falls back to rule-based answers")
	}

	// Initialize usecase layer
	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Catalog: usecase.NewCatalogService(store, catalogClient, usecase.CatalogServiceConfig{
			SearchLimit:  cfg.Catalog.SearchLimit,
			ResolveLimit: cfg.Catalog.ResolveLimit,
			SimilarLimit: cfg.Catalog.SimilarLimit,
			MaxSimilar:   cfg.Catalog.MaxSimilar,
		}),
		Scrape: usecase.NewScrapeService(store, scrapeClient, usecase.ScrapeServiceConfig{
			SearchWaitFor: cfg.Scrape.SearchWaitFor,
			DetailWaitFor: cfg.Scrape.DetailWaitFor,
		}),
		Sessions: usecase.NewSearchSessions(),
		Scorer:   usecase.NewCompatibilityService(),
		Advice:   usecase.NewAdviceService(generator),
	})

	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("forced shutdown")
		return
	}
	logging.Info().Msg("server stopped")
}
