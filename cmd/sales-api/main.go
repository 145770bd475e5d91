package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/salesflow/sales-api/internal/config"
	"github.com/salesflow/sales-api/internal/postgres"
	"github.com/salesflow/sales-api/internal/sales/application"
	saleshttp "github.com/salesflow/sales-api/internal/sales/infrastructure/http"
	saleskafka "github.com/salesflow/sales-api/internal/sales/infrastructure/kafka"
	"github.com/salesflow/sales-api/internal/sales/infrastructure/noop"
	salespg "github.com/salesflow/sales-api/internal/sales/infrastructure/postgres"
	"github.com/salesflow/sales-api/internal/sales/infrastructure/product"
	"github.com/salesflow/sales-api/pkg/idempotency"
	"github.com/salesflow/sales-api/pkg/logging"
	"github.com/salesflow/sales-api/pkg/shutdown"
	"github.com/salesflow/sales-api/pkg/tracing"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.New(cfg.ServiceName)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.ServiceName, cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis (consumer dedup)
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.DedupTTL)

	repo := salespg.NewRepository(log, pool)
	stock := product.NewClient(log, cfg.ProductAPIURL, cfg.StockCheckTimeout)

	var publisher application.EventPublisher = noop.Publisher{}
	var kafkaPub *saleskafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = saleskafka.NewPublisher(log, cfg.KafkaBrokers, cfg.StockUpdateTopic, 1024)
		kafkaPub.Start()
		publisher = kafkaPub
	} else {
		log.Warn("no kafka brokers configured, stock updates disabled")
	}

	svc := application.NewService(log, repo, stock, publisher)
	reconciler := application.NewReconciler(log, repo)

	if len(cfg.KafkaBrokers) > 0 {
		consumer := saleskafka.NewConsumer(log, cfg.KafkaBrokers, cfg.SalesConfirmationTopic, cfg.ConsumerGroup, reconciler, idem)
		go func() {
			log.Info("sales confirmation consumer started", "topic", cfg.SalesConfirmationTopic, "group", cfg.ConsumerGroup)
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("consumer stopped", "err", err)
				cancel()
			}
		}()
	}

	handler := saleshttp.NewHandler(log, svc)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if kafkaPub != nil {
		kafkaPub.Close()
		kafkaPub.WaitClosed()
	}
	log.Info("sales-api shutdown complete")
}
