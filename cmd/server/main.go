package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"sitewatch/internal/alert/bus"
	alerthandler "sitewatch/internal/alert/handler"
	"sitewatch/internal/alert/lifecycle"
	alertmetrics "sitewatch/internal/alert/metrics"
	"sitewatch/internal/alert/sink"
	"sitewatch/internal/audit"
	audithandler "sitewatch/internal/audit/handler"
	auditmetrics "sitewatch/internal/audit/metrics"
	auditmem "sitewatch/internal/audit/store/memory"
	auditpg "sitewatch/internal/audit/store/postgres"
	compliancehandler "sitewatch/internal/compliance/handler"
	compliancemetrics "sitewatch/internal/compliance/metrics"
	"sitewatch/internal/compliance/ports"
	"sitewatch/internal/compliance/processor"
	compliancemem "sitewatch/internal/compliance/store/memory"
	compliancepg "sitewatch/internal/compliance/store/postgres"
	"sitewatch/internal/dashboard"
	"sitewatch/internal/dashboard/cache"
	dashboardhandler "sitewatch/internal/dashboard/handler"
	"sitewatch/internal/health"
	healthhandler "sitewatch/internal/health/handler"
	"sitewatch/internal/platform/config"
	"sitewatch/internal/platform/httpserver"
	kafkaproducer "sitewatch/internal/platform/kafka/producer"
	"sitewatch/internal/platform/logger"
	platformredis "sitewatch/internal/platform/redis"
	httpapi "sitewatch/internal/transport/http"
	"sitewatch/pkg/domain"
)

// main wires dependencies and owns process lifecycle. Business logic lives
// in the internal service packages.
func main() {
	if err := run(); err != nil {
		logger.New().Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fan-out and the bounded operational working set.
	alertMx := alertmetrics.New()
	eventBus := bus.New(log,
		bus.WithReplayDepth(cfg.ReplayDepth),
		bus.WithSubscriberBuffer(cfg.SubscriberBuffer),
		bus.WithMetrics(alertMx),
	)
	manager := lifecycle.NewManager(eventBus, log,
		lifecycle.WithMaxHistory(cfg.MaxAlertHistory),
		lifecycle.WithRetentionWindow(cfg.RetentionWindow),
		lifecycle.WithMetrics(alertMx),
	)

	// Audit trail store: durable when Postgres is configured.
	var auditStore audit.Store
	if cfg.Postgres.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		pg := auditpg.New(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		auditStore = pg
	} else {
		auditStore = auditmem.NewInMemoryStore()
	}

	auditSvc, err := audit.NewService(auditStore, eventBus, log, audit.WithMetrics(auditmetrics.New()))
	if err != nil {
		return err
	}

	// The process-level monitoring session. Signals that carry no session
	// of their own land on this trail.
	sessionID := domain.NewSessionID()
	if _, err := auditSvc.StartTrail(ctx, sessionID, "sitewatch-server"); err != nil {
		return err
	}
	log.Info("monitoring session started", "session_id", sessionID)

	// Compliance event archive.
	var eventStore ports.EventStorePort
	if cfg.Postgres.DSN != "" {
		pg, err := compliancepg.NewStore(cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		eventStore = pg
	} else {
		eventStore = compliancemem.NewStore()
	}

	complianceSvc, err := processor.NewService(auditSvc, eventBus, manager, eventStore, sessionID, log,
		processor.WithMetrics(compliancemetrics.New()))
	if err != nil {
		return err
	}

	healthSvc, err := health.NewService(auditSvc, eventBus, sessionID, log)
	if err != nil {
		return err
	}

	// Dashboard read side, cached when Redis is configured.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	snapshots := cache.New(redisClient, cfg.Redis.SnapshotTTL)
	aggregator := dashboard.NewAggregator(manager, eventStore)

	router := httpapi.NewRouter(log,
		httpapi.WithTimeout(10*time.Second, audithandler.New(auditSvc, log)),
		httpapi.WithTimeout(10*time.Second, compliancehandler.New(complianceSvc, log)),
		httpapi.WithTimeout(10*time.Second, dashboardhandler.New(aggregator, snapshots, log)),
		httpapi.WithTimeout(10*time.Second, healthhandler.New(healthSvc, log)),
		// No timeout: serves the SSE stream.
		alerthandler.New(manager, eventBus, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting sitewatch", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return lifecycle.NewWorker(manager, cfg.SweepInterval).Run(ctx)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		prod, err := kafkaproducer.New(cfg.Kafka)
		if err != nil {
			return err
		}
		defer prod.Close()
		relay := sink.NewKafkaRelay(eventBus, prod, cfg.Kafka.TopicPrefix, log)
		g.Go(func() error {
			return relay.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
