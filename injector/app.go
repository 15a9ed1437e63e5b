package injector

import (
	"github.com/archivest/retain-core/internal/app/deliveries"
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/archivest/retain-core/pkg/sequence"
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
)

// Application represents the main application container for retain-core
type Application struct {
	HealthHandler          *deliveries.HealthHandler
	CatalogHandler         *deliveries.CatalogHandler
	RetentionPolicyHandler *deliveries.RetentionPolicyHandler
	CustodyHandler         *deliveries.CustodyHandler
	DestructionHandler     *deliveries.DestructionHandler
	AuditHandler           *deliveries.AuditHandler
	RateLimitMiddleware    *middlewares.RateLimitMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Apply global rate limit for the public API
	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	// Maintenance surface gets a stricter limit
	maintenanceGroup := router.Group("/maintenance")
	maintenanceGroup.Use(app.RateLimitMiddleware.LimitByIP(middlewares.MaintenanceLimit))

	// Register all handlers
	app.HealthHandler.RegisterRoutes(router)
	app.CatalogHandler.RegisterRoutes(router)
	app.RetentionPolicyHandler.RegisterRoutes(router)
	app.CustodyHandler.RegisterRoutes(router)
	app.DestructionHandler.RegisterRoutes(router)
	app.AuditHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	wire.Value("retain"),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
	wire.Bind(new(sequence.Allocator), new(*sequence.RedisAllocator)),
	sequence.NewRedisAllocator,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewAuditService,
	services.NewCatalogService,
	services.NewRetentionPolicyService,
	services.NewCustodyService,
	services.NewDestructionService,
	services.NewRecencyService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewActorMiddleware,
	middlewares.NewMaintenanceMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewCatalogHandler,
	deliveries.NewRetentionPolicyHandler,
	deliveries.NewCustodyHandler,
	deliveries.NewDestructionHandler,
	deliveries.NewAuditHandler,
	wire.Struct(new(Application), "*"),
)
