package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/email"
	"github.com/jwalitptl/patient-registry/internal/handler"
	attendanceHandler "github.com/jwalitptl/patient-registry/internal/handler/attendance"
	"github.com/jwalitptl/patient-registry/internal/handler/health"
	"github.com/jwalitptl/patient-registry/internal/handler/patient"
	promHandler "github.com/jwalitptl/patient-registry/internal/handler/prometheus"
	"github.com/jwalitptl/patient-registry/internal/middleware"
	"github.com/jwalitptl/patient-registry/internal/repository/memory"
	"github.com/jwalitptl/patient-registry/internal/repository/sqlstore"
	"github.com/jwalitptl/patient-registry/internal/router"
	attendanceService "github.com/jwalitptl/patient-registry/internal/service/attendance"
	"github.com/jwalitptl/patient-registry/internal/service/notification"
	patientService "github.com/jwalitptl/patient-registry/internal/service/patient"
	"github.com/jwalitptl/patient-registry/pkg/logger"
	"github.com/jwalitptl/patient-registry/pkg/messaging"
	"github.com/jwalitptl/patient-registry/pkg/messaging/rabbitmq"
	"github.com/jwalitptl/patient-registry/pkg/messaging/redis"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLog := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger.SetGlobal(appLog)
	if appLog.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Metrics.Namespace, registry)

	ctx := context.Background()

	// Initialize database
	db, err := sqlstore.Open(ctx, cfg.Database, appLog, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.BootstrapSchema(ctx); err != nil {
		db.Close()
		log.Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	broker, err := newBroker(ctx, cfg.Events, appLog)
	if err != nil {
		db.Close()
		log.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("failed to connect to message broker")
	}

	notifier := notification.NewService(
		notification.Config{Topic: cfg.Events.Topic},
		broker,
		email.NewService(cfg.Email, appLog),
		m,
		appLog,
	)

	// Repositories and services
	patientRepo := sqlstore.NewPatientRepository(db)
	orderRepo := memory.NewOrderRepository(memory.DemoOrders)

	patientSvc := patientService.NewService(patientRepo, notifier, m, appLog)
	attendanceSvc := attendanceService.NewService(orderRepo, appLog)

	// Handlers
	metricsPath := ""
	var metricsH *promHandler.Handler
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		metricsH = promHandler.New(registry, m)
	}

	var rateLimit *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		rateLimit = &middleware.RateLimiterConfig{
			RPS:     cfg.RateLimit.RequestsPerSecond,
			Burst:   cfg.RateLimit.Burst,
			IdleTTL: cfg.RateLimit.IdleTTL,
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		patient.NewHandler(patientSvc),
		attendanceHandler.NewHandler(attendanceSvc),
		health.NewHandler(db),
		handler.NewHandler("patient registry API", router.Endpoints(metricsPath)),
		metricsH,
		router.RouterConfig{
			RateLimit:    rateLimit,
			CORSConfig:   corsConfig,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			MetricsPath:  metricsPath,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("driver", db.Driver()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to drain notifications")
	}

	log.Info().Msg("server exited properly")
}

func newBroker(ctx context.Context, cfg config.EventsConfig, l zerolog.Logger) (messaging.Broker, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cfg.Driver {
	case "redis":
		return redis.NewRedisBroker(connectCtx, redis.Config{
			URL:          cfg.RedisURL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
		}, l)
	case "rabbitmq":
		return rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.Exchange}, l)
	default:
		return messaging.NewNoopBroker(), nil
	}
}
