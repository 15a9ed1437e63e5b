package deliveries

import (
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	auditService          *services.AuditService
	recencyService        *services.RecencyService
	actorMiddleware       *middlewares.ActorMiddleware
	maintenanceMiddleware *middlewares.MaintenanceMiddleware
	rateLimitMiddleware   *middlewares.RateLimitMiddleware
}

func NewAuditHandler(
	auditService *services.AuditService,
	recencyService *services.RecencyService,
	actorMiddleware *middlewares.ActorMiddleware,
	maintenanceMiddleware *middlewares.MaintenanceMiddleware,
	rateLimitMiddleware *middlewares.RateLimitMiddleware,
) *AuditHandler {
	return &AuditHandler{
		auditService:          auditService,
		recencyService:        recencyService,
		actorMiddleware:       actorMiddleware,
		maintenanceMiddleware: maintenanceMiddleware,
		rateLimitMiddleware:   rateLimitMiddleware,
	}
}

func (h *AuditHandler) RegisterRoutes(router fiber.Router) {
	auditGroup := router.Group("/audit")

	auditGroup.Post("/events", h.actorMiddleware.RequireActor, h.rateLimitMiddleware.LimitByActor(middlewares.ActorAPILimit), h.LogEvent)
	auditGroup.Get("/events", h.GetEntries)
	auditGroup.Get("/events/recent", h.RecentEntries)
	auditGroup.Get("/events/:id", h.GetEntry)
	auditGroup.Get("/events/:id/target-name", h.ResolveTargetName)

	// Maintenance surface. This is the only mount of the maintenance key
	// check; business routes never carry an authorization capability.
	maintenanceGroup := router.Group("/maintenance/audit-events")
	maintenanceGroup.Use(h.maintenanceMiddleware.RequireMaintenanceKey)
	maintenanceGroup.Patch("/:id", h.UpdateEntry)
	maintenanceGroup.Delete("/:id", h.DeleteEntry)
}

func (h *AuditHandler) LogEvent(c *fiber.Ctx) error {
	var dto models.AuditLogCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	ipAddress, clientInfo := middlewares.ClientMeta(c)
	id := h.auditService.LogEvent(&dto, ipAddress, clientInfo)

	return pkg.SuccessResponse(c, fiber.Map{"id": id})
}

func (h *AuditHandler) GetEntries(c *fiber.Ctx) error {
	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	result, err := h.auditService.GetEntries(pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, result)
}

func (h *AuditHandler) RecentEntries(c *fiber.Ctx) error {
	days := c.QueryInt("days", services.WindowLastWeek)
	entries, err := h.recencyService.RecentAuditEntries(days)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, entries)
}

func (h *AuditHandler) GetEntry(c *fiber.Ctx) error {
	entry, err := h.auditService.GetEntry(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, entry)
}

func (h *AuditHandler) ResolveTargetName(c *fiber.Ctx) error {
	entry, err := h.auditService.GetEntry(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, fiber.Map{"name": h.auditService.ResolveTargetName(entry)})
}

func (h *AuditHandler) UpdateEntry(c *fiber.Ctx) error {
	var dto models.AuditLogUpdateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	entry, err := h.auditService.UpdateEntry(c.Params("id"), &dto, middlewares.MaintenanceAuthorization(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, entry)
}

func (h *AuditHandler) DeleteEntry(c *fiber.Ctx) error {
	if err := h.auditService.DeleteEntry(c.Params("id"), middlewares.MaintenanceAuthorization(c)); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, true)
}
