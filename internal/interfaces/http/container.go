package http

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/rolegate/rolegate/internal/application/entitlement"
	"github.com/rolegate/rolegate/internal/application/order/dispatch"
	orderUsecases "github.com/rolegate/rolegate/internal/application/order/usecases"
	appExchangeRate "github.com/rolegate/rolegate/internal/application/payment/exchangerate"
	"github.com/rolegate/rolegate/internal/application/payment/paymentgateway"
	"github.com/rolegate/rolegate/internal/application/payment/pricing"
	planUsecases "github.com/rolegate/rolegate/internal/application/plan/usecases"
	subscriptionUsecases "github.com/rolegate/rolegate/internal/application/subscription/usecases"
	vo "github.com/rolegate/rolegate/internal/domain/plan/valueobjects"
	"github.com/rolegate/rolegate/internal/infrastructure/cache"
	"github.com/rolegate/rolegate/internal/infrastructure/config"
	"github.com/rolegate/rolegate/internal/infrastructure/discord"
	"github.com/rolegate/rolegate/internal/infrastructure/email"
	"github.com/rolegate/rolegate/internal/infrastructure/exchangerate"
	"github.com/rolegate/rolegate/internal/infrastructure/lock"
	"github.com/rolegate/rolegate/internal/infrastructure/metrics"
	infraPayment "github.com/rolegate/rolegate/internal/infrastructure/payment"
	"github.com/rolegate/rolegate/internal/infrastructure/scheduler"
	"github.com/rolegate/rolegate/internal/shared/biztime"
	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	redisConnectTimeout = 5 * time.Second
	orderCreateLimit    = 30
	orderCreateWindow   = time.Minute
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services. It wires everything together and
// provides Shutdown() for graceful termination.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	clock  biztime.Clock
	redis  *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *UseCases

	// Handlers
	hdlrs *allHandlers

	// Domain services
	gateway  paymentgateway.Gateway
	actor    entitlement.Actor
	locker   orderUsecases.OrderLocker
	rates    appExchangeRate.RateProvider
	methods  *pricing.MethodTable
	metrics  *metrics.Metrics
	notifier *email.FailureNotifier

	// Background services
	dispatcher       *dispatch.Dispatcher
	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		clock:  biztime.SystemClock(),
	}

	// Section 1: Infrastructure - Redis, Repositories, Metrics
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Payment - Gateway, Methods, Exchange rate
	if err := c.initPayment(); err != nil {
		c.closeRedis()
		return nil, err
	}

	// Section 3: Entitlement - Discord actor, Lock, Notifier
	c.initEntitlement()

	// Section 4: Use cases and the fulfillment dispatcher
	c.initUseCases()

	// Section 5: Handlers
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	if c.cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), c.cfg.Redis, redisConnectTimeout)
		if err != nil {
			return err
		}
		c.redis = client
		c.log.Infow("redis connected", "addr", c.cfg.Redis.GetAddr())
	}

	c.initRepositories()

	if c.cfg.Metrics.Enabled {
		c.metrics = metrics.MustNewMetrics()
	}
	return nil
}

func (c *Container) initPayment() error {
	gateway, err := infraPayment.NewGateway(c.cfg.Payment, c.log.Named("payment"))
	if err != nil {
		var unknown *infraPayment.ErrUnknownPlatform
		if !errors.As(err, &unknown) {
			return fmt.Errorf("failed to configure payment gateway: %w", err)
		}
		// The service keeps running; orders and notifications are refused.
		c.log.Warnw("unsupported payment platform, orders and notifications will be rejected",
			"platform", c.cfg.Payment.Platform)
	} else {
		c.gateway = gateway
		c.log.Infow("payment gateway configured", "platform", gateway.Platform())
	}

	methods := make([]pricing.Method, 0, len(c.cfg.Payment.Methods))
	for _, m := range c.cfg.Payment.Methods {
		currency, err := vo.ParseCurrency(m.Currency)
		if err != nil {
			return fmt.Errorf("payment method %q: %w", m.Name, err)
		}
		methods = append(methods, pricing.Method{Name: m.Name, Code: m.Code, Currency: currency})
	}
	table, err := pricing.NewMethodTable(methods)
	if err != nil {
		return fmt.Errorf("invalid payment methods: %w", err)
	}
	c.methods = table

	static, err := exchangerate.NewStaticProvider(c.cfg.Payment.ExchangeRate)
	if err != nil {
		return err
	}
	c.rates = static
	if c.cfg.Payment.ExchangeRateSource == "coingecko" {
		c.rates = exchangerate.NewCoinGeckoProvider(static, c.log.Named("exchangerate"))
	}
	return nil
}

func (c *Container) initEntitlement() {
	if c.cfg.Discord.Token == "" || c.cfg.Discord.GuildID == "" {
		c.log.Warnw("discord token or guild_id missing, role updates will fail")
	}
	c.actor = discord.NewClient(discord.Config{
		Token:      c.cfg.Discord.Token,
		GuildID:    c.cfg.Discord.GuildID,
		BaseURL:    c.cfg.Discord.APIBaseURL,
		Timeout:    c.cfg.Discord.Timeout,
		MaxRetries: c.cfg.Discord.MaxRetries,
	}, c.log.Named("discord"))

	if c.redis != nil {
		c.locker = lock.NewRedisLocker(c.redis, 0, c.log.Named("lock"))
	} else {
		c.locker = lock.NewMemoryLocker()
	}

	if c.cfg.Email.IsConfigured() {
		c.notifier = email.NewFailureNotifier(email.SMTPConfig{
			Host:         c.cfg.Email.SMTPHost,
			Port:         c.cfg.Email.SMTPPort,
			Username:     c.cfg.Email.SMTPUser,
			Password:     c.cfg.Email.SMTPPassword,
			FromAddress:  c.cfg.Email.FromAddress,
			FromName:     c.cfg.Email.FromName,
			AdminAddress: c.cfg.Email.AdminAddress,
		}, c.log)
		if c.redis != nil {
			c.notifier.SetAlertGate(cache.NewAlertDeduplicator(c.redis))
		}
	}
}

func (c *Container) initUseCases() {
	repos := c.repos
	ucs := &UseCases{}

	// Plans
	ucs.SetPlan = planUsecases.NewSetPlanUseCase(repos.planRepo, vo.Currency(c.cfg.Plan.DefaultCurrency), c.log.Named("plan"))
	ucs.DeletePlan = planUsecases.NewDeletePlanUseCase(repos.planRepo, c.log.Named("plan"))
	ucs.ListPlans = planUsecases.NewListPlansUseCase(repos.planRepo)
	ucs.ImportPlans = planUsecases.NewImportPlansUseCase(ucs.SetPlan)

	// Orders
	orderLog := c.log.Named("order")
	ucs.CreateOrder = orderUsecases.NewCreateOrderUseCase(
		repos.orderRepo, repos.planRepo, c.gateway, c.methods,
		pricing.NewConverter(c.rates), c.clock, orderLog,
	)
	ucs.GetOrder = orderUsecases.NewGetOrderUseCase(repos.orderRepo)
	ucs.FulfillOrder = orderUsecases.NewFulfillOrderUseCase(
		repos.orderRepo, repos.planRepo, repos.subscriptionRepo,
		c.actor, c.locker, repos.txManager, c.clock, orderLog,
	)
	ucs.CheckOrder = orderUsecases.NewCheckOrderUseCase(repos.orderRepo, c.gateway, ucs.FulfillOrder, orderLog)
	ucs.ReconcileOrders = orderUsecases.NewReconcilePendingOrdersUseCase(repos.orderRepo, ucs.CheckOrder, c.clock, orderLog)

	// Subscriptions
	subLog := c.log.Named("subscription")
	ucs.ExpireSubscriptions = subscriptionUsecases.NewExpireSubscriptionsUseCase(repos.subscriptionRepo, c.actor, c.clock, subLog)
	ucs.GrantSubscription = subscriptionUsecases.NewGrantSubscriptionUseCase(repos.subscriptionRepo, c.actor, c.clock, subLog)

	if c.notifier != nil {
		ucs.FulfillOrder.SetFailureNotifier(c.notifier)
	}
	if c.metrics != nil {
		ucs.CreateOrder.SetMetrics(c.metrics)
		ucs.FulfillOrder.SetMetrics(c.metrics)
		ucs.ExpireSubscriptions.SetMetrics(c.metrics)
	}

	c.ucs = ucs
	c.dispatcher = dispatch.NewDispatcher(ucs.FulfillOrder, c.cfg.Dispatch.Workers, c.cfg.Dispatch.QueueSize, c.log.Named("dispatch"))
}

// UseCases returns the wired use cases.
func (c *Container) UseCases() *UseCases {
	return c.ucs
}

// Gateway returns the active payment gateway, nil for an unsupported platform.
func (c *Container) Gateway() paymentgateway.Gateway {
	return c.gateway
}

// SeedPlans imports the plan file named by plan.seed_file, if any.
func (c *Container) SeedPlans(ctx context.Context) error {
	path := c.cfg.Plan.SeedFile
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open plan seed file: %w", err)
	}
	defer f.Close()

	result, err := c.ucs.ImportPlans.Execute(ctx, f)
	if err != nil {
		return err
	}
	c.log.Infow("plan seed file imported", "file", path, "created", result.Created, "updated", result.Updated)
	return nil
}

// StartBackground starts the fulfillment workers and the scheduler.
func (c *Container) StartBackground() error {
	c.dispatcher.Start()

	sm, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := sm.RegisterSubscriptionJobs(c.ucs.ExpireSubscriptions, c.cfg.Subscription.SweepInterval); err != nil {
		return fmt.Errorf("failed to register subscription jobs: %w", err)
	}
	if _, ok := c.gateway.(paymentgateway.OrderQuerier); ok {
		if err := sm.RegisterOrderJobs(c.ucs.ReconcileOrders); err != nil {
			return fmt.Errorf("failed to register order jobs: %w", err)
		}
	}
	sm.Start()
	c.schedulerManager = sm
	return nil
}

// Shutdown stops background work in reverse start order. The HTTP server
// must already be stopped so no new jobs arrive.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
		c.schedulerManager = nil
	}
	if err := c.dispatcher.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("dispatcher: %w", err))
	}
	c.closeRedis()

	return errors.Join(errs...)
}

func (c *Container) closeRedis() {
	if c.redis == nil {
		return
	}
	if err := c.redis.Close(); err != nil {
		c.log.Warnw("failed to close redis", "error", err)
	}
	c.redis = nil
}
