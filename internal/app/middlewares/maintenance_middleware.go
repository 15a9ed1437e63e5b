package middlewares

import (
	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/pkg"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/archivest/retain-core/pkg/maintenance"
	"github.com/gofiber/fiber/v2"
)

// MaintenanceMiddleware gates the out-of-band maintenance surface. The
// authorization capability it issues is stored in request locals and is the
// only way audit-log mutation is ever permitted; no business route mounts
// this middleware.
type MaintenanceMiddleware struct{}

func NewMaintenanceMiddleware() *MaintenanceMiddleware {
	return &MaintenanceMiddleware{}
}

// RequireMaintenanceKey validates the X-Maintenance-Key header against the
// configured key and stores the resulting capability
func (m *MaintenanceMiddleware) RequireMaintenanceKey(c *fiber.Ctx) error {
	auth, err := maintenance.Authorize(infrastructures.Config.MAINTENANCE_KEY, c.Get("X-Maintenance-Key"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("Invalid maintenance key"))
	}

	c.Locals("maintenance_authorization", auth)

	return c.Next()
}

// MaintenanceAuthorization returns the capability stored by
// RequireMaintenanceKey, or nil when the route is not a maintenance route
func MaintenanceAuthorization(c *fiber.Ctx) *maintenance.Authorization {
	auth, _ := c.Locals("maintenance_authorization").(*maintenance.Authorization)
	return auth
}
