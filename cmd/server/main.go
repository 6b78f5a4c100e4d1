package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/polica/planogram-service/config"
	_ "github.com/polica/planogram-service/docs"
	"github.com/polica/planogram-service/internal/database"
	"github.com/polica/planogram-service/internal/handlers"
	"github.com/polica/planogram-service/internal/middleware"
	"github.com/polica/planogram-service/internal/optimizer"
	"github.com/polica/planogram-service/internal/sweepers"
	"github.com/polica/planogram-service/internal/telemetry"
)

// @title			Planogram Service API
// @version		1.0
// @description	Internal API for shelf-space allocation, store templates, and optimization run history.
// @BasePath		/internal
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting planogram service")

	ctx := context.Background()

	telemetryCleanup, err := telemetry.Init(ctx, telemetry.GetConfigFromEnv())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize telemetry")
	} else {
		defer telemetryCleanup(ctx)
	}

	var sweeper *sweepers.RetentionSweeper
	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, run history disabled")
	} else {
		if err := database.Connect(
			ctx,
			dbURL,
			cfg.Database.MaxConnections,
			cfg.Database.MinConnections,
			cfg.Database.MaxConnLifetime,
			cfg.Database.MaxConnIdleTime,
		); err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()

		logger.Info().Msg("Database connected")

		if err := database.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Failed to ensure database schema")
		}

		sweeper = sweepers.NewRetentionSweeper(
			logger,
			cfg.History.SweepInterval,
			cfg.History.Retention,
			cfg.History.Archive,
		)
		go sweeper.Start(ctx)
	}

	engineLogger := logger.With().Str("component", "optimizer").Logger()
	handlers.InitEngine(optimizer.NewEngine(&cfg.Engine, optimizer.WithLogger(engineLogger)))

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadyCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware())
	internal.Use(middleware.ServiceRateLimitMiddleware(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.BurstSize))
	{
		internal.GET("/health", handlers.HealthCheck)

		planogram := internal.Group("/planogram")
		{
			planogram.POST("/optimize", handlers.Optimize)
			planogram.POST("/optimize/bundles", handlers.OptimizeBundles)
			planogram.POST("/optimize/batch", handlers.OptimizeBatch)
			planogram.GET("/strategies", handlers.ListStrategies)
			planogram.GET("/templates", handlers.ListTemplates)
			planogram.GET("/runs", handlers.ListRuns)
			planogram.GET("/runs/:runId", handlers.GetRun)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	if sweeper != nil {
		sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "planogram-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})

	// Per-client fairness on every route; the internal group adds the
	// service-wide capacity limiter on top.
	router.Use(middleware.RateLimitMiddleware())
}
