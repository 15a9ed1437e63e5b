package deliveries

import (
	"github.com/archivest/retain-core/internal/app/middlewares"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/app/services"
	"github.com/gofiber/fiber/v2"
)

type CustodyHandler struct {
	custodyService      *services.CustodyService
	recencyService      *services.RecencyService
	actorMiddleware     *middlewares.ActorMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewCustodyHandler(custodyService *services.CustodyService, recencyService *services.RecencyService, actorMiddleware *middlewares.ActorMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *CustodyHandler {
	return &CustodyHandler{
		custodyService:      custodyService,
		recencyService:      recencyService,
		actorMiddleware:     actorMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *CustodyHandler) RegisterRoutes(router fiber.Router) {
	actorLimit := h.rateLimitMiddleware.LimitByActor(middlewares.ActorAPILimit)

	custodyGroup := router.Group("/custody")

	custodyGroup.Post("/transfers", h.actorMiddleware.RequireActor, actorLimit, h.RecordTransfer)
	custodyGroup.Get("/transfers/recent", h.RecentTransfers)
	custodyGroup.Get("/transfers/:id", h.GetEvent)
	custodyGroup.Get("/transfers/:id/duration", h.GetDuration)
	custodyGroup.Post("/transfers/:id/signatures", h.actorMiddleware.RequireActor, actorLimit, h.AttachSignature)
	custodyGroup.Post("/transfers/:id/verify", h.actorMiddleware.RequireActor, actorLimit, h.Verify)
	custodyGroup.Post("/transfers/:id/break", h.actorMiddleware.RequireActor, actorLimit, h.BreakChain)

	custodyGroup.Get("/chains/:itemRef", h.GetChain)
	custodyGroup.Get("/chains/:itemRef/verify", h.VerifyChain)
}

func (h *CustodyHandler) RecordTransfer(c *fiber.Ctx) error {
	var dto models.CustodyTransferCreateDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	event, err := h.custodyService.RecordTransfer(&dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, event)
}

func (h *CustodyHandler) RecentTransfers(c *fiber.Ctx) error {
	days := c.QueryInt("days", services.WindowLastWeek)
	events, err := h.recencyService.RecentCustodyEvents(days)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, events)
}

func (h *CustodyHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.custodyService.GetEvent(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, event)
}

func (h *CustodyHandler) GetDuration(c *fiber.Ctx) error {
	hours, err := h.custodyService.Duration(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, fiber.Map{"hours": hours})
}

func (h *CustodyHandler) AttachSignature(c *fiber.Ctx) error {
	var dto models.SignatureAttachDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	event, err := h.custodyService.AttachSignature(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, event)
}

func (h *CustodyHandler) Verify(c *fiber.Ctx) error {
	event, err := h.custodyService.Verify(c.Params("id"), middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, event)
}

func (h *CustodyHandler) BreakChain(c *fiber.Ctx) error {
	var dto models.ChainBreakDto
	if err := c.BodyParser(&dto); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	event, err := h.custodyService.BreakChain(c.Params("id"), &dto, middlewares.Actor(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, event)
}

func (h *CustodyHandler) GetChain(c *fiber.Ctx) error {
	chain, err := h.custodyService.GetChain(c.Params("itemRef"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, chain)
}

func (h *CustodyHandler) VerifyChain(c *fiber.Ctx) error {
	links, err := h.custodyService.VerifyChain(c.Params("itemRef"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}
	return pkg.SuccessResponse(c, links)
}
