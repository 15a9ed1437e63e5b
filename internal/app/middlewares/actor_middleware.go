package middlewares

import (
	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/gofiber/fiber/v2"
)

// ActorMiddleware extracts the caller-supplied actor identity. The engine
// never resolves "current user" itself: the excluded portal layer
// authenticates and forwards the identity in the X-Actor header.
type ActorMiddleware struct{}

func NewActorMiddleware() *ActorMiddleware {
	return &ActorMiddleware{}
}

// RequireActor rejects requests without an actor identity
func (m *ActorMiddleware) RequireActor(c *fiber.Ctx) error {
	actor := c.Get("X-Actor")
	if actor == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("X-Actor header is required"))
	}

	c.Locals("actor", actor)

	return c.Next()
}

// Actor returns the actor identity stored by RequireActor
func Actor(c *fiber.Ctx) string {
	actor, _ := c.Locals("actor").(string)
	return actor
}

// ClientMeta returns the request's network/client metadata for audit entries
func ClientMeta(c *fiber.Ctx) (ipAddress, clientInfo *string) {
	if ip := c.IP(); ip != "" {
		ipAddress = &ip
	}
	if ua := c.Get("User-Agent"); ua != "" {
		clientInfo = &ua
	}
	return ipAddress, clientInfo
}
