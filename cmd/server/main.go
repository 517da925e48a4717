package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/corerips-wq/rips-engine/internal/catalog"
	"github.com/corerips-wq/rips-engine/internal/config"
	"github.com/corerips-wq/rips-engine/internal/handlers"
	"github.com/corerips-wq/rips-engine/internal/metrics"
	"github.com/corerips-wq/rips-engine/internal/storage"
	"github.com/corerips-wq/rips-engine/internal/validation"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger, err := cfg.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting RIPS Validation Service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.HTTPPort))

	// Initialize storage
	repo, err := storage.Connect(cfg.GetDatabaseDSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize catalogs
	catalogs := catalog.NewStore()
	loader := catalog.NewLoader(catalogs, logger)
	collector := metrics.NewCollector()
	loadCatalogs(cfg, loader, logger)
	cie10, cie11, cups, correspondence := catalogs.Snapshot().Sizes()
	collector.SetCatalogSizes(cie10, cie11, cups, correspondence)

	// Initialize validation engine
	engine := validation.NewEngine(catalogs, logger, engineOptions(cfg.Engine, logger))

	// Setup HTTP router
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.NewValidationHandler(cfg, engine, catalogs, loader, repo, collector, logger)
	handler.RegisterRoutes(router)

	if cfg.Monitoring.EnableMetrics {
		router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Starting graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Service stopped")
}

// loadCatalogs loads whichever catalog exports the configuration points
// at. Missing paths leave the store in format-fallback mode, which is a
// supported degraded state, so failures log and continue.
func loadCatalogs(cfg *config.Config, loader *catalog.Loader, logger *zap.Logger) {
	load := func(name, path string, fn func(string) (int, error)) {
		if path == "" {
			return
		}
		if _, err := fn(path); err != nil {
			logger.Warn("catalog load failed, falling back to format checks",
				zap.String("catalog", name), zap.Error(err))
		}
	}
	load("cie10", cfg.Catalogs.CIE10Path, loader.LoadCIE10File)
	load("cie11", cfg.Catalogs.CIE11Path, loader.LoadCIE11File)
	load("cups", cfg.Catalogs.CUPSPath, loader.LoadCUPSFile)
	load("correspondence", cfg.Catalogs.CorrespondencePath, loader.LoadCorrespondenceFile)
}

func engineOptions(cfg config.EngineConfig, logger *zap.Logger) validation.Options {
	opts := validation.DefaultOptions()
	opts.MaxFindings = cfg.MaxFindings
	opts.Corpus = validation.CorpusRules{
		DuplicateWindowDays:   cfg.DuplicateWindowDays,
		DailyVolumeThreshold:  cfg.DailyVolumeThreshold,
		VariabilityFloor:      cfg.VariabilityFloor,
		VariabilityMinRecords: cfg.VariabilityMinRecords,
	}
	if start, err := time.Parse("2006-01-02", cfg.CIE11Start); err == nil {
		opts.CIE11Start = start
	} else {
		logger.Warn("invalid engine.cie11_start, using default", zap.String("value", cfg.CIE11Start))
	}
	if end, err := time.Parse("2006-01-02", cfg.CoexistenceEnd); err == nil {
		opts.CoexistenceEnd = end
	} else {
		logger.Warn("invalid engine.coexistence_end, using default", zap.String("value", cfg.CoexistenceEnd))
	}
	return opts
}
