package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aadi90392/yoga-master-full/config"
	"github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/mongodb"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/search"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// worker consumes class index jobs and runs the scheduled enrollment
// counter reconciliation.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-worker", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	store := mongodb.NewStore(client.Database(cfg.MongoDatabase))

	// Redis only serves the popular-classes cache, which Reconcile invalidates
	stats := application.NewStatsService(store, nil, logger)
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		stats.Redis = rdb
	}

	// Scheduled reconciliation of totalEnrolled against enrollments
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.ReconcileSchedule, func() {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		n, err := stats.Reconcile(rctx)
		if err != nil {
			logger.WithError(err).Error("reconcile failed")
			return
		}
		logger.WithField("fixed", n).Info("reconcile finished")
	}); err != nil {
		log.Fatalf("invalid RECONCILE_SCHEDULE %q: %v", cfg.ReconcileSchedule, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	addrs := cfg.ESAddrs()
	if cfg.RabbitMQURL == "" || len(addrs) == 0 {
		logger.Warn("RabbitMQ or Elasticsearch not configured; index consumer disabled")
		<-ctx.Done()
		logger.Info("worker stopped")
		return
	}

	es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	index := search.NewClassIndex(es, cfg.ESClassesIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index %s: %v", cfg.ESClassesIndex, err)
	}
	indexer := application.NewIndexService(store.Classes, index, logger)
	if n, err := indexer.Backfill(ctx); err != nil {
		logger.WithError(err).Warn("index backfill incomplete")
	} else {
		logger.WithField("classes", n).Info("index backfill done")
	}

	logger.WithField("queue", cfg.RabbitMQIndexQueue).Info("index consumer started")
	for {
		err := helpers.ConsumeJSON(ctx, cfg.RabbitMQURL, cfg.RabbitMQIndexQueue, 16, indexer.Handle)
		if ctx.Err() != nil {
			break
		}
		logger.WithError(err).Warn("index consumer stopped; reconnecting")
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
	}
	logger.Info("worker stopped")
}
