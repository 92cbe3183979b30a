package provider

import (
	"time"

	"github.com/compoundrx/storefront/internal/cache"
	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/payment/stripe"
	"github.com/compoundrx/storefront/internal/queue"
	"github.com/compoundrx/storefront/internal/repository"
	"github.com/compoundrx/storefront/internal/service"
)

// Container wires repositories and services together.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	OrderRepo    repository.OrderRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	FavoriteRepo repository.FavoriteRepository
	CategoryRepo repository.CategoryRepository
	SettingRepo  repository.SettingRepository
	ReportRepo   repository.ReportRepository

	// Services
	AuthService      *service.AuthService
	UserAuthService  *service.UserAuthService
	ProductService   *service.ProductService
	CategoryService  *service.CategoryService
	SettingService   *service.SettingService
	CartService      *service.CartService
	FavoriteService  *service.FavoriteService
	GuestService     *service.GuestService
	ReconcileService *service.ReconcileService
	OrderService     *service.OrderService
	PaymentService   *service.PaymentService
	ReportService    *service.ReportService

	GuestStateStore *cache.GuestStateStore
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queue.NewClient(cfg),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.FavoriteRepo = repository.NewFavoriteRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.ReportRepo = repository.NewReportRepository(db)
}

func (c *Container) initServices() {
	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AuthService = service.NewAuthService(c.AdminRepo, c.Config)
	c.UserAuthService = service.NewUserAuthService(c.UserRepo, c.Config)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.FavoriteService = service.NewFavoriteService(c.FavoriteRepo, c.ProductRepo)

	c.GuestStateStore = cache.NewGuestStateStore(constants.GuestStateTTLDays * 24 * time.Hour)
	c.GuestService = service.NewGuestService(c.GuestStateStore, c.ProductRepo)
	c.ReconcileService = service.NewReconcileService(c.GuestStateStore, c.CartRepo, c.FavoriteRepo, c.ProductRepo)

	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.SettingService, c.QueueClient, c.Config)

	var stripeClient *stripe.Client
	if c.Config.Stripe.SecretKey != "" {
		client, err := stripe.NewClient(stripe.Config{
			SecretKey:     c.Config.Stripe.SecretKey,
			WebhookSecret: c.Config.Stripe.WebhookSecret,
			APIBase:       c.Config.Stripe.APIBase,
			SuccessURL:    c.Config.Stripe.SuccessURL,
			CancelURL:     c.Config.Stripe.CancelURL,
		})
		if err != nil {
			logger.Errorw("provider_init_stripe_failed", "error", err)
		} else {
			stripeClient = client
		}
	} else {
		logger.Warnw("provider_stripe_not_configured")
	}
	c.PaymentService = service.NewPaymentService(c.OrderService, c.OrderRepo, stripeClient, c.Config)

	c.ReportService = service.NewReportService(c.ReportRepo, c.SettingService)
}
