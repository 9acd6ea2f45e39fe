// Package container keeps the process-wide singletons built in main so the
// router can wire modules without threading every client through.
package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/config"
	"github.com/aadi90392/yoga-master-full/internal/application"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
	jwt    *helpers.JWTManager

	store   repo.Store
	audit   repo.AuditRepository
	gateway application.PaymentGateway

	// optional backends; nil means not configured
	pg     *pgxpool.Pool
	rdb    *redis.Client
	gcs    *storage.Client
	es     *elasticsearch.Client
	rabbit *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetJWT(m *helpers.JWTManager) { jwt = m }
func GetJWT() *helpers.JWTManager  { return jwt }

func SetStore(s repo.Store)                         { store = s }
func GetStore() repo.Store                          { return store }
func SetAuditRepo(r repo.AuditRepository)           { audit = r }
func GetAuditRepo() repo.AuditRepository            { return audit }
func SetPaymentGateway(g application.PaymentGateway) { gateway = g }
func GetPaymentGateway() application.PaymentGateway  { return gateway }

func SetPGPool(p *pgxpool.Pool)               { pg = p }
func GetPGPool() *pgxpool.Pool                { return pg }
func SetRedis(r *redis.Client)                { rdb = r }
func GetRedis() *redis.Client                 { return rdb }
func SetGCS(s *storage.Client)                { gcs = s }
func GetGCS() *storage.Client                 { return gcs }
func SetES(c *elasticsearch.Client)           { es = c }
func GetES() *elasticsearch.Client            { return es }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbit = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbit }

// Backends reports which optional backends were wired at startup.
func Backends() map[string]bool {
	return map[string]bool{
		"postgres":      pg != nil,
		"redis":         rdb != nil,
		"gcs":           gcs != nil,
		"elasticsearch": es != nil,
		"rabbitmq":      rabbit != nil,
	}
}
