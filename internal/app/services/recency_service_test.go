package services

import (
	"testing"
	"time"

	"github.com/archivest/retain-core/internal/app/models"
	"github.com/stretchr/testify/assert"
)

func TestRecencyColumnResolution(t *testing.T) {
	service := NewRecencyService(nil)

	tests := []struct {
		name   string
		entity string
		axis   models.TimeAxis
		column string
		ok     bool
	}{
		{"destruction expiry axis", TargetDestructionRecord, models.TimeAxisExpiry, "scheduled_date", true},
		{"destruction actual date", TargetDestructionRecord, models.TimeAxisDestruction, "actual_date", true},
		{"custody event axis", TargetCustodyEvent, models.TimeAxisEvent, "custody_timestamp", true},
		{"audit create axis", TargetAuditEntry, models.TimeAxisCreate, "timestamp", true},
		{"policy version expiry axis", TargetPolicyVersion, models.TimeAxisExpiry, "effective_date", true},
		{"citation create axis", TargetLegalCitation, models.TimeAxisCreate, "created_at", true},
		{"unregistered entity", TargetRecordSeries, models.TimeAxisCreate, "", false},
		{"unmapped axis", TargetLegalCitation, models.TimeAxisExpiry, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, ok := service.Column(tt.entity, tt.axis)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.column, column)
		})
	}
}

func TestRecentCutoff(t *testing.T) {
	now := time.Date(2031, 2, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2031, 2, 8, 14, 30, 0, 0, time.UTC), RecentCutoff(now, WindowLastWeek))
	assert.Equal(t, time.Date(2031, 1, 16, 14, 30, 0, 0, time.UTC), RecentCutoff(now, WindowLastMonth))
}

func TestExpiryWindow(t *testing.T) {
	now := time.Date(2031, 2, 15, 23, 59, 59, 0, time.UTC)

	start, end := ExpiryWindow(now, WindowExpiryLookout)

	// Window is date-based and inclusive of both today and the last day
	assert.Equal(t, time.Date(2031, 2, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2031, 3, 17, 0, 0, 0, 0, time.UTC), end)
}
