package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/manabihub/insights/pkg/auth"
	"github.com/manabihub/insights/pkg/config"
	"github.com/manabihub/insights/pkg/courses"
	"github.com/manabihub/insights/pkg/httputil"
	"github.com/manabihub/insights/pkg/middleware"
	"github.com/manabihub/insights/pkg/observability"
	"github.com/manabihub/insights/pkg/records"
	"github.com/manabihub/insights/pkg/reporting"
	"github.com/manabihub/insights/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.WithError(err).Error("Failed to ensure database schema")
		os.Exit(1)
	}
	logger.Info("Database ready")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unavailable, rate limiting will fail open")
		}
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
		os.Exit(1)
	}

	presets, err := reporting.LoadExportPresets(cfg.Reports.ExportPresetPath)
	if err != nil {
		logger.WithError(err).Error("Failed to load export presets")
		os.Exit(1)
	}

	resolver, err := auth.NewResolver(db)
	if err != nil {
		logger.WithError(err).Error("Failed to create token resolver")
		os.Exit(1)
	}

	selector := reporting.NewSelector(db, cfg.Reports.SourceTimeout, logger, metrics)
	logger.Infof("Report source chain: %v", selector.Sources())

	reportService := reporting.NewService(selector, logger)
	reportHandler := reporting.NewHandler(reportService, presets, logger, cfg.Reports.DefaultWindowDays)
	recordHandler := records.NewHandler(records.NewStore(db), logger)

	courseLogger := logrus.New()
	courseLogger.SetFormatter(&logrus.JSONFormatter{})
	courseHandlers := courses.NewHandlers(db, courseLogger)

	authMW := middleware.NewAuthMiddleware(resolver, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	// Report reads need reports:view; export carries its own capability and a
	// tighter rate limit.
	viewRouter := api.PathPrefix("").Subrouter()
	viewRouter.Use(middleware.RequireCapability(auth.CapViewReports))
	reportHandler.RegisterRoutes(viewRouter)
	recordHandler.RegisterRoutes(viewRouter)

	errorLogRouter := api.PathPrefix("").Subrouter()
	errorLogRouter.Use(middleware.RequireCapability(auth.CapViewErrorLogs))
	recordHandler.RegisterErrorLogRoutes(errorLogRouter)

	userAdminRouter := api.PathPrefix("").Subrouter()
	userAdminRouter.Use(middleware.RequireCapability(auth.CapManageUsers))
	recordHandler.RegisterUserAdminRoutes(userAdminRouter)

	exportChain := httputil.Chain(middleware.RequireCapability(auth.CapExportReports))
	if redisClient != nil {
		exportLimiter := middleware.NewRateLimiter(redisClient, middleware.ExportRateLimitConfig(), "export")
		exportChain = httputil.Chain(
			middleware.RequireCapability(auth.CapExportReports),
			exportLimiter.Handler(logger, metrics),
		)
	}
	reportHandler.RegisterExportRoute(api, exportChain)

	courseRouter := api.PathPrefix("").Subrouter()
	courseRouter.Use(middleware.RequireCapability(auth.CapAuthorCourses))
	courseHandlers.RegisterRoutes(courseRouter)

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.TimeoutMiddleware(cfg.Server.RequestTimeout),
		authMW.Handler,
	}
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.DefaultRateLimitConfig(), "api")
		chain = append(chain, limiter.Handler(logger, metrics))
	}

	var apiHandler http.Handler = metrics.InstrumentHandler("api", httputil.Chain(chain...)(router))
	if cfg.Observability.OTelEnabled {
		apiHandler = otelhttp.NewHandler(apiHandler, "insights-api")
	}

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      apiHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.NewHealthChecker(db, redisClient).RegisterHealthEndpoints(healthMux)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", observability.Handler(registry))
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(func(shutdownCtx context.Context) error {
		return observability.ShutdownOTel(shutdownCtx, otelProviders, logger)
	})

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
	}
	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}
