// The pwatchd command implements the printwatch server
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/printwatch/printwatch/internal/pwatchd/bambu"
	"github.com/printwatch/printwatch/internal/pwatchd/config"
	"github.com/printwatch/printwatch/internal/pwatchd/database"
	printerhttp "github.com/printwatch/printwatch/internal/pwatchd/printer/http"
	printerpg "github.com/printwatch/printwatch/internal/pwatchd/printer/postgres"
	printerredis "github.com/printwatch/printwatch/internal/pwatchd/printer/redis"
	"github.com/printwatch/printwatch/internal/pwatchd/printer/service"
	"github.com/printwatch/printwatch/internal/pwatchd/ratelimit"
	ratelimitredis "github.com/printwatch/printwatch/internal/pwatchd/ratelimit/redis"
	"github.com/printwatch/printwatch/internal/pwatchd/status"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
	telemetrypg "github.com/printwatch/printwatch/internal/pwatchd/telemetry/postgres"
)

// eventRetention is how long job events are kept before pruning
const eventRetention = 90 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Structured logging with JSON format for easier parsing
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error

	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			logger.Error("failed to load config file", "error", err)
			os.Exit(1)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	// Establish database connection and run migrations
	db, err := database.Setup(connStr, 5, time.Second)
	if err != nil {
		logger.Error("failed to setup database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, links, telemetryService := setupServices(ctx, cfg, db, redisClient, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      setupRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Reconnect printers that were online before the last shutdown
	go links.ConnectAll(ctx)

	// Periodic event pruning
	go pruneLoop(ctx, telemetryService, logger)

	go func() {
		logger.Info("starting server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
		)

		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	<-shutdown
	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop the hub and close printer links
	cancel()
	links.Shutdown()

	logger.Info("server stopped")
}

// setupServices wires the repositories, services and the link manager
func setupServices(
	ctx context.Context,
	cfg *config.Config,
	db *sql.DB,
	redisClient *redis.Client,
	logger *slog.Logger,
) (*printerhttp.Handler, *bambu.Manager, telemetry.Service) {
	// Printer domain
	printerRepo := printerpg.NewRepository(db, logger)
	printerPublisher := printerredis.NewPublisher(redisClient, logger)
	printerService := service.New(printerRepo, printerPublisher, logger)

	// Job event recording
	telemetryRepo := telemetrypg.NewRepository(db)
	telemetryService := telemetry.NewService(telemetryRepo, logger)

	// Live telemetry and printer links
	statusStore := status.NewStore()
	links := bambu.NewManager(printerService, statusStore, telemetryService, bambu.LinkOptions{
		Port:           cfg.Link.Port,
		Username:       cfg.Link.Username,
		KeepAlive:      cfg.Link.KeepAlive,
		ConnectTimeout: cfg.Link.ConnectTimeout,
		Trace:          cfg.Link.Trace,
	}, logger)

	// Rate limiting
	rateLimitStore := ratelimitredis.NewStore(redisClient)
	rateLimitService := ratelimit.NewService(rateLimitStore, logger)
	rateLimitService.RegisterConfiguredLimits(cfg.RateLimit)

	handler := printerhttp.NewHandler(
		printerService,
		telemetryService,
		statusStore,
		links,
		rateLimitService,
		logger,
	)
	go handler.Run(ctx)

	return handler, links, telemetryService
}

// setupRouter mounts the API surface
func setupRouter(handler *printerhttp.Handler) http.Handler {
	r := chi.NewRouter()
	r.Mount("/", handler.Router())
	return r
}

// pruneLoop removes job events past the retention window once a day
func pruneLoop(ctx context.Context, telemetryService telemetry.Service, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := telemetryService.Prune(ctx, eventRetention); err != nil {
				logger.Error("event pruning failed", "error", err)
			}
		}
	}
}
