package di

import (
	"go.uber.org/zap"

	"github.com/practicehub/payments-service/internal/credentials"
	"github.com/practicehub/payments-service/internal/factory"
	"github.com/practicehub/payments-service/internal/handler"
	"github.com/practicehub/payments-service/internal/repository"
	"github.com/practicehub/payments-service/internal/service"
	"github.com/practicehub/payments-service/pkg/database"
	"github.com/practicehub/payments-service/pkg/redis"
)

// Container holds all dependencies for the payments service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Gateway plumbing
	Resolver *credentials.Resolver
	Factory  *factory.Factory

	// Repositories
	OrderRepo repository.OrderRepository

	// Services
	PaymentService service.PaymentService

	// Handlers
	HealthHandler  *handler.HealthHandler
	PaymentHandler *handler.PaymentHandler
	WebhookHandler *handler.WebhookHandler
	GatewayHandler *handler.GatewayHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB          *database.PostgresDB
	Redis       *redis.Client
	Resolver    *credentials.Resolver
	Registry    *factory.Registry
	OrderRepo   repository.OrderRepository
	WithBreaker bool
	Logger      *zap.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Resolver:  cfg.Resolver,
		OrderRepo: cfg.OrderRepo,
	}

	registry := cfg.Registry
	if registry == nil {
		registry = factory.DefaultRegistry()
	}
	c.Factory = factory.New(cfg.Resolver, registry, factory.Options{WithBreaker: cfg.WithBreaker}, cfg.Logger)

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.GatewayHandler = handler.NewGatewayHandler(c.Factory)

	if c.OrderRepo != nil {
		c.PaymentService = service.NewPaymentService(c.Factory, c.OrderRepo, cfg.Logger)
		c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService)
		c.WebhookHandler = handler.NewWebhookHandler(c.PaymentService)
	}

	return c
}
