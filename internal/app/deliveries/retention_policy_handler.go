package deliveries

import (
	"time"

	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RetentionPolicyHandler struct {
	policyService       *services.RetentionPolicyService
	actorMiddleware     *middlewares.ActorMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewRetentionPolicyHandler(policyService *services.RetentionPolicyService, actorMiddleware *middlewares.ActorMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *RetentionPolicyHandler {
	return &RetentionPolicyHandler{
		policyService:       policyService,
		actorMiddleware:     actorMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *RetentionPolicyHandler) RegisterRoutes(router fiber.Router) {
	actorLimit := h.rateLimitMiddleware.LimitByActor(middlewares.ActorAPILimit)

	policyGroup := router.Group("/policies")

	policyGroup.Post("/", h.actorMiddleware.RequireActor, actorLimit, h.CreatePolicy)
	policyGroup.Get("/:id", h.GetPolicy)
	policyGroup.Get("/:id/effective-retention", h.GetEffectiveRetention)
	policyGroup.Post("/:id/versions", h.actorMiddleware.RequireActor, actorLimit, h.CreateVersion)

	versionGroup := router.Group("/policy-versions")
	versionGroup.Post("/:id/activate", h.actorMiddleware.RequireActor, actorLimit, h.Activate)
	versionGroup.Post("/:id/archive", h.actorMiddleware.RequireActor, actorLimit, h.Archive)
	versionGroup.Delete("/:id", h.actorMiddleware.RequireActor, actorLimit, h.DeleteVersion)
}

func (h *RetentionPolicyHandler) CreatePolicy(c *fiber.Ctx) error {
	var dto models.PolicyCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	policy, err := h.policyService.CreatePolicy(&dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, policy)
}

func (h *RetentionPolicyHandler) GetPolicy(c *fiber.Ctx) error {
	policy, err := h.policyService.GetPolicy(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, policy)
}

func (h *RetentionPolicyHandler) GetEffectiveRetention(c *fiber.Ctx) error {
	policyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewValidationError("Invalid policy ID format"))
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return pkg.ErrorResponse(c, errors.NewValidationError("as_of must be formatted YYYY-MM-DD"))
		}
		asOf = parsed
	}

	rule, err := h.policyService.EffectiveRetention(policyID, asOf)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, rule)
}

func (h *RetentionPolicyHandler) CreateVersion(c *fiber.Ctx) error {
	var dto models.PolicyVersionCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	version, err := h.policyService.CreateVersion(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, version)
}

func (h *RetentionPolicyHandler) Activate(c *fiber.Ctx) error {
	version, err := h.policyService.Activate(c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, version)
}

func (h *RetentionPolicyHandler) Archive(c *fiber.Ctx) error {
	version, err := h.policyService.Archive(c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, version)
}

func (h *RetentionPolicyHandler) DeleteVersion(c *fiber.Ctx) error {
	if err := h.policyService.DeleteVersion(c.Params("id"), middlewares.Actor(c)); err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, true)
}
