package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionDestruction(t *testing.T) {
	allowed := []struct {
		from, to DestructionStatus
	}{
		{DestructionStatusDraft, DestructionStatusInProgress},
		{DestructionStatusInProgress, DestructionStatusCompleted},
		{DestructionStatusCompleted, DestructionStatusVerified},
		{DestructionStatusVerified, DestructionStatusCertified},
		{DestructionStatusInProgress, DestructionStatusDisputed},
		{DestructionStatusCompleted, DestructionStatusDisputed},
		{DestructionStatusVerified, DestructionStatusDisputed},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransitionDestruction(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct {
		from, to DestructionStatus
	}{
		{DestructionStatusDraft, DestructionStatusCompleted},
		{DestructionStatusDraft, DestructionStatusCertified},
		{DestructionStatusDraft, DestructionStatusDisputed},
		{DestructionStatusInProgress, DestructionStatusDraft},
		{DestructionStatusCompleted, DestructionStatusInProgress},
		{DestructionStatusVerified, DestructionStatusCompleted},
		{DestructionStatusCertified, DestructionStatusDisputed},
		{DestructionStatusCertified, DestructionStatusVerified},
		{DestructionStatusDisputed, DestructionStatusInProgress},
		{DestructionStatusDisputed, DestructionStatusDraft},
	}
	for _, tt := range denied {
		assert.False(t, CanTransitionDestruction(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDestructionTerminalStates(t *testing.T) {
	assert.True(t, (&DestructionRecord{Status: DestructionStatusCertified}).IsTerminal())
	assert.True(t, (&DestructionRecord{Status: DestructionStatusDisputed}).IsTerminal())
	assert.False(t, (&DestructionRecord{Status: DestructionStatusVerified}).IsTerminal())
	assert.False(t, (&DestructionRecord{Status: DestructionStatusDraft}).IsTerminal())
}

func TestDestructionDeletableOnlyInDraft(t *testing.T) {
	all := []DestructionStatus{
		DestructionStatusDraft, DestructionStatusInProgress, DestructionStatusCompleted,
		DestructionStatusVerified, DestructionStatusCertified, DestructionStatusDisputed,
	}
	for _, status := range all {
		record := DestructionRecord{Status: status}
		assert.Equal(t, status == DestructionStatusDraft, record.Deletable(), string(status))
	}
}

func TestCanDispute(t *testing.T) {
	assert.True(t, (&DestructionRecord{Status: DestructionStatusInProgress}).CanDispute())
	assert.True(t, (&DestructionRecord{Status: DestructionStatusCompleted}).CanDispute())
	assert.True(t, (&DestructionRecord{Status: DestructionStatusVerified}).CanDispute())
	assert.False(t, (&DestructionRecord{Status: DestructionStatusDraft}).CanDispute())
	assert.False(t, (&DestructionRecord{Status: DestructionStatusCertified}).CanDispute())
	assert.False(t, (&DestructionRecord{Status: DestructionStatusDisputed}).CanDispute())
}
