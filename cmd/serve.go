package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pos-backend/internal/config"
	"pos-backend/internal/handlers"
	"pos-backend/internal/logger"
	"pos-backend/internal/messaging"
	"pos-backend/internal/notify"
	"pos-backend/internal/service"
	"pos-backend/internal/storage"
)

const shutdownTimeout = 8 * time.Second

type serveOptions struct {
	memory bool
}

var serveOpts serveOptions

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API on PORT.

Configuration is read from .env, configs/config.yaml and the environment.
With --memory nothing is persisted and MongoDB is not contacted.`,
	Example: `  # Serve against MongoDB
  pos-backend serve

  # Serve from memory for local UI work
  pos-backend serve --memory`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveOpts.memory, "memory", false, "Keep data in memory instead of MongoDB")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("serve")
	handlers.RequestTimeout = cfg.Timeout()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, serveOpts.memory)
	if err != nil {
		return err
	}
	defer be.close()

	docs, err := openDocumentStore(ctx, cfg)
	if err != nil {
		return err
	}

	hub := notify.NewHub()
	go hub.Run(ctx)

	deps := be.deps
	deps.Notifier = hub

	api := handlers.API{
		Estimates: service.NewEstimateService(deps),
		Orders:    service.NewOrderService(deps),
		Reports:   service.NewReportService(deps),
		Messenger: messaging.NewFast2SMS(messaging.Fast2SMSConfig{
			APIKey:     cfg.Fast2SMSAPIKey,
			SenderID:   cfg.Fast2SMSSenderID,
			TemplateID: cfg.Fast2SMSTemplateID,
			BaseURL:    cfg.Fast2SMSBaseURL,
		}),
		Documents: docs,
		Clients:   hub,
	}
	if cfg.Fast2SMSAPIKey == "" {
		log.Warn().Msg("FAST2SMS_API_KEY is not set, messaging endpoints will refuse requests")
	}

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           corsHandler(cfg).Handler(newRouter(cfg, api, hub, be.ping)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Address()).
			Str("storage", be.kind).
			Str("sequence", cfg.SequenceBackend).
			Msg("POS backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
	return nil
}

// loadConfig reads configuration and installs the configured logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Setup(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return nil, fmt.Errorf("logger setup: %w", err)
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, nil
}

func openDocumentStore(ctx context.Context, cfg *config.Config) (storage.DocumentStore, error) {
	if cfg.S3Bucket == "" {
		return storage.NewLocalStore(cfg.StaticDir, cfg.PublicBaseURL), nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}
