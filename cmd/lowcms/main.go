package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/config"
	"github.com/kailas-cloud/lowcms/internal/db"
	dbRedis "github.com/kailas-cloud/lowcms/internal/db/redis"
	"github.com/kailas-cloud/lowcms/internal/db/sqlite"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	logpkg "github.com/kailas-cloud/lowcms/internal/logger"
	"github.com/kailas-cloud/lowcms/internal/metrics"
	contentrepo "github.com/kailas-cloud/lowcms/internal/repository/content"
	databaserepo "github.com/kailas-cloud/lowcms/internal/repository/database"
	schemarepo "github.com/kailas-cloud/lowcms/internal/repository/schema"
	"github.com/kailas-cloud/lowcms/internal/repository/schemacache"
	chiTransport "github.com/kailas-cloud/lowcms/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lowcms/internal/usecase/health"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	queryuc "github.com/kailas-cloud/lowcms/internal/usecase/query"
	"github.com/kailas-cloud/lowcms/internal/version"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lowcms API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("workspace_root", cfg.Workspace.Root),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	ws, err := workspace.Open(cfg.Workspace.Root)
	if err != nil {
		logger.Fatal("Failed to open workspace", zap.Error(err))
	}
	defer func() { _ = ws.Close() }()

	// Register domain metrics explicitly (no init())
	metrics.RegisterDomainMetrics()

	// Repositories share one store and key prefix
	prefix := cfg.Storage.KeyPrefix
	databases := databaserepo.New(store, prefix)
	contents := contentrepo.New(store, prefix)
	schemas := schemarepo.New(store, prefix)

	// Derivation engine, cached unless disabled
	var deriver schema.Deriver = schema.Engine{}
	if ttl := cfg.Inference.CacheTTLSec; ttl >= 0 {
		deriver = schemacache.New(
			deriver, store, prefix, time.Duration(ttl)*time.Second,
			metrics.SchemaCacheTotal, logger,
		)
	}

	// Use case services
	catalogSvc := cataloguc.New(databases, contents, schemas, ws, cfg.Workspace.MaxSampleBytes)
	inferenceSvc := inferenceuc.New(deriver, catalogSvc)
	querySvc := queryuc.New(catalogSvc, i18n.NewLabeler())
	healthSvc := healthuc.New(store, ws)

	server := chiTransport.NewServer(
		catalogSvc, inferenceSvc, querySvc, healthSvc, cfg.Workspace.MaxSampleBytes, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      gzhttp.GzipHandler(r),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the record store for the configured driver.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
