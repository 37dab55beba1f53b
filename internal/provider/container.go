package provider

import (
	"github.com/dujiao-next/storefront/internal/authz"
	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo            repository.AdminRepository
	UserRepo             repository.UserRepository
	UserSessionRepo      repository.UserSessionRepository
	ProductRepo          repository.ProductRepository
	ProductCardRepo      repository.ProductCardRepository
	OrderRepo            repository.OrderRepository
	CouponRepo           repository.CouponRepository
	GiftCodeRepo         repository.GiftCodeRepository
	BalanceRepo          repository.BalanceRepository
	OrderAccessAuditRepo repository.OrderAccessAuditRepository

	// Services
	AuthzService            *authz.Service
	AuthService             *service.AuthService
	UserAuthService         *service.UserAuthService
	CaptchaService          *service.CaptchaService
	ProductService          *service.ProductService
	CouponService           *service.CouponService
	CouponAdminService      *service.CouponAdminService
	CardService             *service.CardService
	BalanceService          *service.BalanceService
	GiftCodeService         *service.GiftCodeService
	OrderAccessService      *service.OrderAccessService
	OrderFulfillmentService *service.OrderFulfillmentService
	OrderService            *service.OrderService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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
	c.UserSessionRepo = repository.NewUserSessionRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ProductCardRepo = repository.NewProductCardRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.GiftCodeRepo = repository.NewGiftCodeRepository(db)
	c.BalanceRepo = repository.NewBalanceRepository(db)
	c.OrderAccessAuditRepo = repository.NewOrderAccessAuditRepository(db)
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

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.BalanceService = service.NewBalanceService(c.BalanceRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.UserSessionRepo, c.BalanceService)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.CardService = service.NewCardService(c.ProductCardRepo, c.ProductRepo)
	c.GiftCodeService = service.NewGiftCodeService(c.GiftCodeRepo, c.OrderRepo, c.ProductRepo, c.BalanceService, c.Config.App.URL, c.Config.Gift.ExpireDays)
	c.OrderAccessService = service.NewOrderAccessService(c.OrderRepo, c.OrderAccessAuditRepo)
	c.OrderFulfillmentService = service.NewOrderFulfillmentService(c.ProductRepo, c.ProductCardRepo, c.OrderRepo, c.BalanceService)
	c.OrderService = service.NewOrderService(service.OrderServiceOptions{
		OrderRepo:      c.OrderRepo,
		ProductRepo:    c.ProductRepo,
		CouponRepo:     c.CouponRepo,
		Checker:        service.NewInventoryChecker(c.OrderRepo),
		Pricing:        service.NewPricingService(c.CouponRepo),
		BalanceSvc:     c.BalanceService,
		FulfillmentSvc: c.OrderFulfillmentService,
		AccessSvc:      c.OrderAccessService,
		QueueClient:    c.QueueClient,
		ExpireMinutes:  c.Config.Order.PendingExpireMinutes,
	})
}
