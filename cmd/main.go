package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/config"
	"github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/container"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/memory"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/mongodb"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/payment"
	pginfra "github.com/aadi90392/yoga-master-full/internal/infrastructure/postgres"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/internal/router"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
	"github.com/aadi90392/yoga-master-full/pkg/response"
	"github.com/aadi90392/yoga-master-full/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// Marketplace storage
	if cfg.UseMemoryStorage() {
		logger.Warn("using in-memory storage; data is lost on restart")
		container.SetStore(memory.NewStore())
	} else {
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
		if err != nil {
			log.Fatalf("failed to connect to mongodb: %v", err)
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Fatalf("failed to ensure mongodb indexes: %v", err)
		}
		container.SetStore(mongodb.NewStore(db))
	}

	// Audit log: Postgres when enabled, otherwise kept in memory
	if cfg.AuditEnabled {
		pool, err := pginfra.OpenAudit(ctx, cfg, logger)
		if err != nil {
			log.Fatalf("audit db: %v", err)
		}
		closers = append(closers, pool.Close)
		container.SetPGPool(pool)
		container.SetAuditRepo(pginfra.NewAuditRepository(pool))
	} else {
		container.SetAuditRepo(&memory.AuditRepository{})
	}

	// Redis (rate limits, checkout lock, popular cache)
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable; continuing with fail-open limits")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		container.SetRedis(rdb)
	}

	// GCS image uploads
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		closers = append(closers, func() { _ = gcsClient.Close() })
		container.SetGCS(gcsClient)
	}

	// Elasticsearch class search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(ctx, addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search falls back to storage")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ index jobs
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQIndexQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; index jobs disabled")
		} else {
			closers = append(closers, pub.Close)
			container.SetRabbitPub(pub)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.AccessSecret, cfg.AccessTTL))
	container.SetPaymentGateway(paymentGateway(cfg, logger))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP(cfg.TrustProxy))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "route not found", nil)
	})

	reg := router.NewRegistry(r, logger)
	reg.Use(middleware.RateLimit(container.GetRedis(),
		middleware.Rule{Scope: "global", Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow},
		middleware.KeyByIP(), middleware.AnyAllow(middleware.AllowPrivateIP(), middleware.AllowPaths("/health"))))
	router.InitModules(reg)
	logger.WithField("routes", reg.RegisterAll()).Info("routes registered")

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// paymentGateway picks Stripe when a secret is configured. The sandbox is
// refused in production so a missing key never settles fake payments.
func paymentGateway(cfg *config.Config, logger *logrus.Logger) application.PaymentGateway {
	if cfg.PaymentSecret != "" {
		return payment.NewStripeGateway(cfg.PaymentSecret)
	}
	if cfg.IsProduction() {
		log.Fatal("PAYMENT_SECRET is required in production")
	}
	logger.Warn("PAYMENT_SECRET not set; using sandbox payment gateway")
	return payment.NewSandboxGateway()
}
