// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"udyam/internal/audit"
	"udyam/internal/otp"
	"udyam/internal/platform/config"
	"udyam/internal/platform/httpserver"
	"udyam/internal/platform/kafka/producer"
	"udyam/internal/platform/logger"
	"udyam/internal/platform/metrics"
	"udyam/internal/platform/postgres"
	"udyam/internal/registration/service"
	"udyam/internal/registration/store"
	httptransport "udyam/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		regStore   service.RegistrationStore
		otpStore   otp.Store
		auditStore audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			return err
		}
		regStore = store.NewPostgresStore(db)
		otpStore = otp.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		regStore = store.NewInMemoryStore()
		otpStore = otp.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		defer client.Close()
		otpStore = otp.NewRedisStore(client)
		log.Info("using redis one-time-code store")
	}

	auditOpts := []audit.Option{audit.WithAsyncBuffer(256)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := producer.New(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("audit fan-out enabled", "topic", cfg.KafkaAuditTopic)
	}
	auditor := audit.NewPublisher(auditStore, log, auditOpts...)
	defer auditor.Close()

	issuer := otp.NewService(otpStore, cfg.OTPTTL, m)
	registrations := service.New(regStore, issuer,
		service.WithLogger(log),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(m),
	)

	handler := httptransport.NewHandler(registrations, log)
	router := httptransport.NewRouter(handler, log, m)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registration server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
