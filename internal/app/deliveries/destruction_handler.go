package deliveries

import (
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/gofiber/fiber/v2"
)

type DestructionHandler struct {
	destructionService  *services.DestructionService
	recencyService      *services.RecencyService
	actorMiddleware     *middlewares.ActorMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewDestructionHandler(destructionService *services.DestructionService, recencyService *services.RecencyService, actorMiddleware *middlewares.ActorMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *DestructionHandler {
	return &DestructionHandler{
		destructionService:  destructionService,
		recencyService:      recencyService,
		actorMiddleware:     actorMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *DestructionHandler) RegisterRoutes(router fiber.Router) {
	actorLimit := h.rateLimitMiddleware.LimitByActor(middlewares.ActorAPILimit)

	destructionGroup := router.Group("/destructions")

	destructionGroup.Post("/", h.actorMiddleware.RequireActor, actorLimit, h.Create)
	destructionGroup.Get("/", h.List)
	destructionGroup.Get("/expiring", h.Expiring)
	destructionGroup.Get("/:id", h.Get)
	destructionGroup.Get("/:id/certificate", h.Certificate)
	destructionGroup.Patch("/:id/schedule", h.actorMiddleware.RequireActor, actorLimit, h.Reschedule)
	destructionGroup.Delete("/:id", h.actorMiddleware.RequireActor, actorLimit, h.Delete)

	destructionGroup.Post("/:id/start", h.actorMiddleware.RequireActor, actorLimit, h.Start)
	destructionGroup.Post("/:id/complete", h.actorMiddleware.RequireActor, actorLimit, h.Complete)
	destructionGroup.Post("/:id/verify", h.actorMiddleware.RequireActor, actorLimit, h.Verify)
	destructionGroup.Post("/:id/certify", h.actorMiddleware.RequireActor, actorLimit, h.IssueCertificate)
	destructionGroup.Post("/:id/dispute", h.actorMiddleware.RequireActor, actorLimit, h.Dispute)
}

func (h *DestructionHandler) Create(c *fiber.Ctx) error {
	var dto models.DestructionCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	record, err := h.destructionService.Create(&dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) List(c *fiber.Ctx) error {
	pagination := &models.PaginationRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}

	result, err := h.destructionService.List(pagination)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, result)
}

func (h *DestructionHandler) Expiring(c *fiber.Ctx) error {
	records, err := h.recencyService.ExpiringDestructions()
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, records)
}

func (h *DestructionHandler) Get(c *fiber.Ctx) error {
	record, err := h.destructionService.Get(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) Certificate(c *fiber.Ctx) error {
	certificate, err := h.destructionService.Certificate(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, certificate)
}

func (h *DestructionHandler) Reschedule(c *fiber.Ctx) error {
	var dto models.DestructionRescheduleDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	record, err := h.destructionService.Reschedule(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) Delete(c *fiber.Ctx) error {
	if err := h.destructionService.Delete(c.Params("id"), middlewares.Actor(c)); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, true)
}

func (h *DestructionHandler) Start(c *fiber.Ctx) error {
	record, err := h.destructionService.Start(c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) Complete(c *fiber.Ctx) error {
	var dto models.DestructionCompleteDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	record, err := h.destructionService.Complete(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) Verify(c *fiber.Ctx) error {
	record, err := h.destructionService.Verify(c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) IssueCertificate(c *fiber.Ctx) error {
	record, err := h.destructionService.IssueCertificate(c.Context(), c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, record)
}

func (h *DestructionHandler) Dispute(c *fiber.Ctx) error {
	var dto models.DestructionDisputeDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	record, err := h.destructionService.Dispute(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, record)
}
