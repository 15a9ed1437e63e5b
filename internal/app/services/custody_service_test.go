package services

import (
	"testing"
	"time"

	"github.com/archivest/retain-core/internal/app/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTransferEvent(t *testing.T) {
	now := time.Date(2031, 2, 1, 9, 0, 0, 0, time.UTC)
	dto := &models.CustodyTransferCreateDto{
		ItemRef:   "BOX-0042",
		FromActor: "vault",
		ToActor:   "courier",
		Reason:    "scheduled pickup",
	}

	event := buildTransferEvent(dto, now)

	// The id must exist before the insert: the previous head's next-event
	// link is written first, so the open-head invariant holds at every
	// statement.
	require.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "BOX-0042", event.ItemRef)
	assert.Equal(t, now, event.CustodyTimestamp)
	assert.Equal(t, models.SecurityLevelStandard, event.SecurityLevel)
	assert.Nil(t, event.PreviousEventID)
	assert.Nil(t, event.NextEventID)
}

func TestBuildTransferEventHonorsExplicitFields(t *testing.T) {
	now := time.Date(2031, 2, 1, 9, 0, 0, 0, time.UTC)
	supplied := now.Add(-48 * time.Hour)
	dto := &models.CustodyTransferCreateDto{
		ItemRef:          "BOX-0042",
		FromActor:        "vault",
		ToActor:          "courier",
		Reason:           "backfilled transfer",
		SecurityLevel:    models.SecurityLevelRestricted,
		CustodyTimestamp: &supplied,
		CorrectsBreak:    true,
	}

	event := buildTransferEvent(dto, now)

	assert.Equal(t, supplied, event.CustodyTimestamp)
	assert.Equal(t, models.SecurityLevelRestricted, event.SecurityLevel)
	assert.True(t, event.CorrectsBreak)
}

func TestBuildTransferEventIDsAreUnique(t *testing.T) {
	dto := &models.CustodyTransferCreateDto{
		ItemRef:   "BOX-0042",
		FromActor: "vault",
		ToActor:   "courier",
		Reason:    "scheduled pickup",
	}

	first := buildTransferEvent(dto, time.Now())
	second := buildTransferEvent(dto, time.Now())

	assert.NotEqual(t, first.ID, second.ID)
}
