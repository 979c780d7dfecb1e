package provider

import (
	"github.com/hornada/hornada/internal/authz"
	"github.com/hornada/hornada/internal/cache"
	"github.com/hornada/hornada/internal/config"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/queue"
	"github.com/hornada/hornada/internal/repository"
	"github.com/hornada/hornada/internal/service"
)

// Container wires repositories and services for the handlers.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo     repository.AdminRepository
	UserRepo      repository.UserRepository
	BranchRepo    repository.BranchRepository
	ProductRepo   repository.ProductRepository
	OfferRepo     repository.OfferRepository
	CartStoreRepo repository.CartStoreRepository
	OrderRepo     *repository.GormOrderRepository
	SettingRepo   repository.SettingRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	CaptchaService  *service.CaptchaService
	SettingService  *service.SettingService
	BranchService   *service.BranchService
	ProductService  *service.ProductService
	OfferService    *service.OfferService
	CartService     *service.CartService
	OrderService    *service.OrderService
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.BranchRepo = repository.NewBranchRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.CartStoreRepo = repository.NewCartStoreRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.BranchService = service.NewBranchService(c.BranchRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.BranchRepo)
	c.OfferService = service.NewOfferService(c.OfferRepo, c.ProductRepo, c.BranchRepo)
	c.CartService = service.NewCartService(c.CartStoreRepo, c.ProductRepo, c.OfferRepo, c.BranchRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.CartService,
		c.SettingService,
		c.QueueClient,
		c.Config.Order.ConfirmExpireMinutes,
	)
}
