package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPolicyVersionLifecycleGuards(t *testing.T) {
	draft := RetentionPolicyVersion{State: PolicyVersionStateDraft}
	active := RetentionPolicyVersion{State: PolicyVersionStateActive}
	archived := RetentionPolicyVersion{State: PolicyVersionStateArchived}

	assert.True(t, draft.CanActivate())
	assert.False(t, active.CanActivate())
	assert.False(t, archived.CanActivate())

	assert.True(t, draft.CanArchive())
	assert.True(t, active.CanArchive())
	assert.False(t, archived.CanArchive())
}

func TestPolicyVersionAppliesAsOf(t *testing.T) {
	effective := date(2025, time.January, 1)
	version := RetentionPolicyVersion{State: PolicyVersionStateActive, EffectiveDate: effective}

	assert.False(t, version.AppliesAsOf(date(2024, time.December, 31)))
	assert.True(t, version.AppliesAsOf(effective))
	assert.True(t, version.AppliesAsOf(date(2025, time.June, 1)))

	// Draft versions never apply regardless of date
	draft := RetentionPolicyVersion{State: PolicyVersionStateDraft, EffectiveDate: effective}
	assert.False(t, draft.AppliesAsOf(date(2026, time.January, 1)))
}

func TestPolicyVersionIsCurrent(t *testing.T) {
	version := RetentionPolicyVersion{ID: uuid.New()}
	other := uuid.New()

	assert.False(t, version.IsCurrent(&RetentionPolicy{}))
	assert.False(t, version.IsCurrent(&RetentionPolicy{CurrentVersionID: &other}))
	assert.True(t, version.IsCurrent(&RetentionPolicy{CurrentVersionID: &version.ID}))
}
