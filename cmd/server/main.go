package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/askmydata/backend/internal/api"
	"github.com/askmydata/backend/internal/config"
	"github.com/askmydata/backend/internal/ingest"
	"github.com/askmydata/backend/internal/llm"
	"github.com/askmydata/backend/internal/llm/factory"
	"github.com/askmydata/backend/internal/logger"
	"github.com/askmydata/backend/internal/prompt"
	"github.com/askmydata/backend/internal/session"
	"github.com/askmydata/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configFlag := flag.String("config", "", "path to askmydata.config.xml or .yaml")
	flag.Parse()

	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	configPath, err := resolveConfigPath(*configFlag)
	if err != nil {
		fmt.Printf("Failed to resolve config path: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:      cfg.Advanced.LogLevel,
		FilePath:   cfg.Advanced.LogFile,
		Production: cfg.Advanced.Production,
	})
	defer func() { _ = log.Sync() }()

	provider, err := factory.New(cfg.LLM)
	if err != nil {
		log.Fatal("failed to create llm provider", zap.Error(err))
	}
	if _, ok := os.LookupEnv(cfg.LLM.APIKeyEnv); !ok {
		log.Warn("llm api key not set; questions will be answered with an error until it is",
			zap.String("env", cfg.LLM.APIKeyEnv))
	}

	sessionMgr := session.NewManager(session.Options{
		TTL:               cfg.GetSessionTimeout(),
		MaxSessions:       cfg.Session.MaxSessions,
		Registry:          ingest.GetGlobalRegistry(),
		AllowedExtensions: cfg.GetAllowedExtensions(),
		Prompt:            prompt.NewBuilder(cfg.Prompt.MaxSampleRows),
		Answerer:          llm.NewClient(provider, cfg.GetLLMTimeout(), log),
		Logger:            log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(cfg.GetCleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessionMgr.CleanupOldSessions(cfg.GetSessionTimeout())
			case <-ctx.Done():
				return
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareConfig{
		Logger:           log,
		RequestLogging:   cfg.Advanced.EnableRequestLogging,
		MaxUploadSize:    cfg.Upload.MaxUploadSize,
		RequestTimeout:   time.Duration(cfg.Server.ReadTimeout) * time.Second,
		EnableCORS:       cfg.Server.EnableCORS,
		AllowOrigins:     cfg.GetAllowedOrigins(),
		EnableGzip:       cfg.Server.EnableCompression,
		CompressionLevel: cfg.Server.CompressionLevel,
		Production:       cfg.Advanced.Production,
	})

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Sessions:       sessionMgr,
		ActiveSessions: sessionMgr.Count,
		Version:        Version,
		Logger:         log,
	}))

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warn("failed to register static routes", zap.Error(err))
			embeddedMode = false
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg, configPath, embeddedMode)

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// resolveConfigPath picks the config file: the flag, then ASKMYDATA_CONFIG,
// then askmydata.config.xml next to the executable.
func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("ASKMYDATA_CONFIG"); env != "" {
		return env, nil
	}
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exePath), "askmydata.config.xml"), nil
}

func printBanner(cfg *config.AppConfig, configPath string, embeddedMode bool) {
	page := "API only"
	if embeddedMode {
		page = "Embedded page"
	}
	model := cfg.LLM.Model
	if model == "" {
		model = "(provider default)"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Ask My Data Server                              ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", page)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  LLM:       %-46s║\n", cfg.LLM.Provider+" / "+model)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}
}
