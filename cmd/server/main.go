package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"valgop/internal/api"
	"valgop/internal/availability"
	"valgop/internal/booking"
	"valgop/internal/cache"
	"valgop/internal/config"
	"valgop/internal/export"
	"valgop/internal/google"
	"valgop/internal/metrics"
	"valgop/internal/models"
	"valgop/internal/notify"
	"valgop/internal/repository"
	"valgop/internal/schedule"
	"valgop/internal/slots"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; real deployments inject env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("VALGOP_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load timezone")
	}

	if cfg.Business.SheetID == "" {
		logger.Fatal().Msg("set business.sheet_id in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ts, err := google.TokenSource(ctx, cfg.Google)
	if err != nil {
		logger.Fatal().Err(err).Msg("google credentials error")
	}
	sheetsAPI, err := google.NewSheets(ctx, ts)
	if err != nil {
		logger.Fatal().Err(err).Msg("sheets client error")
	}
	calendarAPI, err := google.NewCalendar(ctx, ts)
	if err != nil {
		logger.Fatal().Err(err).Msg("calendar client error")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	sheets := google.NewSheetsService(sheetsAPI, cfg, cache.New(rdb, cfg.CacheTTL()), logger)
	calendars := google.NewCalendarService(calendarAPI, loc, logger)

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "data/valgop.db"
	}
	local, err := repository.NewSQLiteRecordStore(dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer local.Close()

	records := repository.NewFailoverRecordStore(sheets, local, &logger)

	notifier := notify.NewMulti(logger,
		notify.NewEmailSender(cfg),
		notify.NewWhatsAppSender(cfg),
	)

	clock := models.SystemClock{}
	resolver := schedule.NewResolver(sheets, cfg, &logger)
	generator := slots.NewGenerator(cfg.LeadTime())

	availabilitySvc := availability.NewService(cfg, sheets, calendars, resolver, generator, clock, loc, &logger)
	transactor := booking.NewTransactor(cfg, sheets, calendars, records, notifier, resolver, clock, loc, &logger)
	exporter := export.NewClientLogExporter(local)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(cfg, availabilitySvc, transactor, exporter, clock, loc, logger)
	logger.Info().Str("timezone", cfg.Timezone).Msg("booking service started")
	if err := server.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server error")
	}
}

func startHealthServer(ctx context.Context, port int, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if rdb != nil {
			ctxPing, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
