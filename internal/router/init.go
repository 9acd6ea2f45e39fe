package router

import (
	"github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/container"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/search"
	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
	"github.com/aadi90392/yoga-master-full/internal/router/modules"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// Services groups the application services built from the container.
type Services struct {
	Auth        *application.AuthService
	Users       *application.UserService
	Instructors *application.InstructorService
	Classes     *application.ClassService
	Cart        *application.CartService
	Checkout    *application.CheckoutService
	Stats       *application.StatsService
	Audit       *application.Auditor
}

// optional adapters are left as nil interfaces when their backend is not configured
func optionalAdapters() (application.ClassSearcher, application.JobPublisher, application.ImageUploader) {
	cfg := container.GetConfig()
	var (
		searcher application.ClassSearcher
		jobs     application.JobPublisher
		uploads  application.ImageUploader
	)
	if es := container.GetES(); es != nil {
		searcher = search.NewClassIndex(es, cfg.ESClassesIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		jobs = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		uploads = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}
	return searcher, jobs, uploads
}

// BuildServices wires every application service from the container singletons.
func BuildServices() Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetStore()
	rdb := container.GetRedis()
	searcher, jobs, uploads := optionalAdapters()

	audit := application.NewAuditor(container.GetAuditRepo(), logger)
	return Services{
		Auth:        application.NewAuthService(store.Users, container.GetJWT(), logger),
		Users:       application.NewUserService(store.Users, uploads, audit, logger),
		Instructors: application.NewInstructorService(store.Users, store.Applications, audit, logger),
		Classes:     application.NewClassService(store, searcher, jobs, uploads, audit, logger),
		Cart:        application.NewCartService(store, logger),
		Checkout: application.NewCheckoutService(store, container.GetPaymentGateway(), cfg.PaymentCurrency,
			rdb, cfg.CheckoutLockTTL, jobs, audit, logger),
		Stats: application.NewStatsService(store, rdb, logger),
		Audit: audit,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	svc := BuildServices()

	guards := modules.Guards{JWT: container.GetJWT(), Roles: svc.Auth, Redis: container.GetRedis()}

	r.Add(
		modules.NewHealthModule(cfg.AppName, container.Backends),
		modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, logger), guards),
		modules.NewUserModule(
			handlers.NewUserHandler(svc.Users, logger),
			handlers.NewInstructorHandler(svc.Instructors, logger),
			guards,
		),
		modules.NewClassModule(handlers.NewClassHandler(svc.Classes, logger), guards),
		modules.NewCommerceModule(
			handlers.NewCartHandler(svc.Cart, logger),
			handlers.NewPaymentHandler(svc.Checkout, logger),
			guards,
		),
		modules.NewStatsModule(handlers.NewStatsHandler(svc.Stats, svc.Audit, logger), guards),
	)
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
