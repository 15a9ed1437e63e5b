package deliveries

import (
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService      *services.CatalogService
	actorMiddleware     *middlewares.ActorMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewCatalogHandler(catalogService *services.CatalogService, actorMiddleware *middlewares.ActorMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *CatalogHandler {
	return &CatalogHandler{
		catalogService:      catalogService,
		actorMiddleware:     actorMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	actorLimit := h.rateLimitMiddleware.LimitByActor(middlewares.ActorAPILimit)

	citationGroup := router.Group("/citations")
	citationGroup.Post("/", h.actorMiddleware.RequireActor, actorLimit, h.CreateCitation)
	citationGroup.Get("/", h.GetCitations)
	citationGroup.Get("/:id", h.GetCitation)
	citationGroup.Patch("/:id", h.actorMiddleware.RequireActor, actorLimit, h.UpdateCitation)

	seriesGroup := router.Group("/record-series")
	seriesGroup.Post("/", h.actorMiddleware.RequireActor, actorLimit, h.CreateRecordSeries)
	seriesGroup.Get("/", h.ListRecordSeries)
	seriesGroup.Get("/:id", h.GetRecordSeries)
}

func (h *CatalogHandler) CreateCitation(c *fiber.Ctx) error {
	var dto models.LegalCitationCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	citation, err := h.catalogService.CreateCitation(&dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, citation)
}

func (h *CatalogHandler) GetCitations(c *fiber.Ctx) error {
	citations, err := h.catalogService.GetCitations()
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, citations)
}

func (h *CatalogHandler) GetCitation(c *fiber.Ctx) error {
	citation, err := h.catalogService.GetCitation(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, citation)
}

func (h *CatalogHandler) UpdateCitation(c *fiber.Ctx) error {
	var dto models.LegalCitationUpdateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	citation, err := h.catalogService.UpdateCitation(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, citation)
}

func (h *CatalogHandler) CreateRecordSeries(c *fiber.Ctx) error {
	var dto models.RecordSeriesCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	series, err := h.catalogService.CreateRecordSeries(&dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, series)
}

func (h *CatalogHandler) ListRecordSeries(c *fiber.Ctx) error {
	series, err := h.catalogService.ListRecordSeries()
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, series)
}

func (h *CatalogHandler) GetRecordSeries(c *fiber.Ctx) error {
	series, err := h.catalogService.GetRecordSeries(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, series)
}
