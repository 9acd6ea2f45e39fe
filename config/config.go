package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Storage backend for the marketplace collections: mongo or memory
	Storage string

	// MongoDB
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// Postgres (audit log)
	AuditEnabled  bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// JWT
	AccessSecret string
	AccessTTL    time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Proxy headers (CF-Connecting-IP, X-Forwarded-For) are trusted
	TrustProxy bool

	// Rate limit per client IP
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Migrations
	MigrationsDir string

	// Payments
	PaymentSecret   string
	PaymentCurrency string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQIndexQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESClassesIndex     string

	// Worker
	ReconcileSchedule string

	// Checkout
	CheckoutLockTTL time.Duration

	// Seed
	SeedAdminEmail    string
	SeedAdminPassword string
	SeedAdminName     string

	// Debug metrics (/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool

	// LOG_LEVEL overrides the env default (debug in development, info elsewhere)
	LogLevel string
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// parsed reads key through parse and falls back to def when the variable is
// unset or malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		log.Printf("config: %s=%q is invalid (%v), using %v", key, raw, err, def)
		return def
	}
	return v
}

func getbool(key string, def bool) bool { return parsed(key, def, strconv.ParseBool) }

func getint(key string, def int) int { return parsed(key, def, strconv.Atoi) }

func getdur(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "yoga-master"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "5000"),
		GinMode: getenv("GIN_MODE", "release"),

		Storage: getenv("APP_STORAGE", "mongo"),

		MongoURI:      getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGODB_DATABASE", "yoga-master"),
		MongoTimeout:  getdur("MONGODB_TIMEOUT", 10*time.Second),

		AuditEnabled:  getbool("AUDIT_ENABLED", false),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "yoga_audit"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		AccessSecret: getenv("ACCESS_SECRET", "devaccesssecret"),
		AccessTTL:    getdur("ACCESS_TTL", 24*time.Hour),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		TrustProxy:         getbool("TRUST_PROXY", false),

		RateLimitMax:    getint("RATE_LIMIT_MAX", 300),
		RateLimitWindow: getdur("RATE_LIMIT_WINDOW", time.Minute),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		PaymentSecret:   getenv("PAYMENT_SECRET", ""),
		PaymentCurrency: getenv("PAYMENT_CURRENCY", "usd"),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQIndexQueue: getenv("RABBITMQ_INDEX_QUEUE", "class-index"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESClassesIndex:     getenv("ES_CLASSES_INDEX", "classes"),

		ReconcileSchedule: getenv("RECONCILE_SCHEDULE", "@every 1h"),

		CheckoutLockTTL: getdur("CHECKOUT_LOCK_TTL", 30*time.Second),

		SeedAdminEmail:    getenv("SEED_ADMIN_EMAIL", "admin@yogamaster.dev"),
		SeedAdminPassword: getenv("SEED_ADMIN_PASSWORD", "password123"),
		SeedAdminName:     getenv("SEED_ADMIN_NAME", "Admin"),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
		LogLevel:       getenv("LOG_LEVEL", ""),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// UseMemoryStorage reports whether the in-memory repositories are selected.
func (c *Config) UseMemoryStorage() bool { return strings.EqualFold(c.Storage, "memory") }

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
