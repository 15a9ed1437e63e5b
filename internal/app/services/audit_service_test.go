package services

import (
	"net/http"
	"testing"

	appError "github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/archivest/retain-core/pkg/maintenance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immutableError(t *testing.T, err error) {
	t.Helper()
	var appErr *appError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	assert.Equal(t, "IMMUTABLE_RECORD", appErr.Code)
}

func TestAuditMutationRequiresMaintenanceAuthorization(t *testing.T) {
	// No database: the immutability gate must reject before any lookup
	service := NewAuditService(nil, infrastructures.NewValidator())
	id := uuid.NewString()
	description := "corrected description"

	t.Run("update without authorization", func(t *testing.T) {
		_, err := service.UpdateEntry(id, &models.AuditLogUpdateDto{Description: &description}, nil)
		immutableError(t, err)
	})

	t.Run("delete without authorization", func(t *testing.T) {
		immutableError(t, service.DeleteEntry(id, nil))
	})

	t.Run("ungranted authorization is no bypass", func(t *testing.T) {
		_, err := service.UpdateEntry(id, &models.AuditLogUpdateDto{Description: &description}, &maintenance.Authorization{})
		immutableError(t, err)
	})
}

func TestResolveTargetNameDegrades(t *testing.T) {
	service := NewAuditService(nil, infrastructures.NewValidator())
	targetType := TargetDestructionRecord
	targetID := uuid.New()

	t.Run("entry without target", func(t *testing.T) {
		assert.Equal(t, models.NotAccessible, service.ResolveTargetName(&models.AuditLogEntry{}))
	})

	t.Run("no resolver registered", func(t *testing.T) {
		entry := &models.AuditLogEntry{TargetType: &targetType, TargetID: &targetID}
		assert.Equal(t, models.NotAccessible, service.ResolveTargetName(entry))
	})

	t.Run("failing resolver degrades instead of erroring", func(t *testing.T) {
		service.RegisterResolver(targetType, func(id uuid.UUID) (string, error) {
			return "", assert.AnError
		})
		entry := &models.AuditLogEntry{TargetType: &targetType, TargetID: &targetID}
		assert.Equal(t, models.NotAccessible, service.ResolveTargetName(entry))
	})

	t.Run("healthy resolver returns the display name", func(t *testing.T) {
		service.RegisterResolver(targetType, func(id uuid.UUID) (string, error) {
			return "SHRED destruction scheduled 2031-02-01", nil
		})
		entry := &models.AuditLogEntry{TargetType: &targetType, TargetID: &targetID}
		assert.Equal(t, "SHRED destruction scheduled 2031-02-01", service.ResolveTargetName(entry))
	})
}
