package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		name  string
		event CustodyTransferEvent
		want  int
	}{
		{
			name:  "bare event with reason",
			event: CustodyTransferEvent{Reason: "routine pickup"},
			want:  55,
		},
		{
			name: "both party signatures",
			event: CustodyTransferEvent{
				Reason:        "routine pickup",
				FromSignature: strPtr("sig-a"),
				ToSignature:   strPtr("sig-b"),
			},
			want: 85,
		},
		{
			name: "fully compliant",
			event: CustodyTransferEvent{
				Reason:             "routine pickup",
				AuthorizationCode:  strPtr("AUTH-77"),
				FromSignature:      strPtr("sig-a"),
				ToSignature:        strPtr("sig-b"),
				WitnessSignature:   strPtr("sig-w"),
				ComplianceVerified: true,
			},
			want: 100,
		},
		{
			name: "broken chain drags the score down",
			event: CustodyTransferEvent{
				Reason:      "routine pickup",
				ChainBroken: true,
			},
			want: 25,
		},
		{
			name:  "bare broken event",
			event: CustodyTransferEvent{ChainBroken: true},
			want:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.ComplianceScore())
		})
	}
}

func TestComplianceScoreClamped(t *testing.T) {
	// Everything present still tops out at 100
	event := CustodyTransferEvent{
		Reason:             "transfer",
		AuthorizationCode:  strPtr("AUTH-1"),
		FromSignature:      strPtr("a"),
		ToSignature:        strPtr("b"),
		WitnessSignature:   strPtr("w"),
		ComplianceVerified: true,
	}
	assert.Equal(t, 100, event.ComplianceScore())
	assert.LessOrEqual(t, event.ComplianceScore(), 100)
	broken := CustodyTransferEvent{ChainBroken: true}
	assert.GreaterOrEqual(t, broken.ComplianceScore(), 0)
}

func TestCustodyDuration(t *testing.T) {
	start := date(2024, time.March, 1)
	event := CustodyTransferEvent{CustodyTimestamp: start}

	t.Run("closed event measures to next event", func(t *testing.T) {
		next := &CustodyTransferEvent{CustodyTimestamp: start.Add(36 * time.Hour)}
		hours, err := event.CustodyDuration(next, start.Add(100*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 36.0, hours)
	})

	t.Run("open event measures to now", func(t *testing.T) {
		hours, err := event.CustodyDuration(nil, start.Add(12*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 12.0, hours)
	})

	t.Run("next event before this one is a data fault", func(t *testing.T) {
		next := &CustodyTransferEvent{CustodyTimestamp: start.Add(-time.Hour)}
		_, err := event.CustodyDuration(next, start.Add(100*time.Hour))
		assert.ErrorIs(t, err, ErrCustodyTimestampOrder)
	})
}

func TestSignaturesComplete(t *testing.T) {
	tests := []struct {
		name  string
		event CustodyTransferEvent
		want  bool
	}{
		{"no signatures", CustodyTransferEvent{}, false},
		{"missing to signature", CustodyTransferEvent{FromSignature: strPtr("a")}, false},
		{"both parties signed", CustodyTransferEvent{FromSignature: strPtr("a"), ToSignature: strPtr("b")}, true},
		{
			"witness required but unsigned",
			CustodyTransferEvent{FromSignature: strPtr("a"), ToSignature: strPtr("b"), WitnessRequired: true},
			false,
		},
		{
			"witness required and signed",
			CustodyTransferEvent{
				FromSignature: strPtr("a"), ToSignature: strPtr("b"),
				WitnessRequired: true, WitnessSignature: strPtr("w"),
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.SignaturesComplete())
		})
	}
}

func TestIsOpen(t *testing.T) {
	event := CustodyTransferEvent{}
	assert.True(t, event.IsOpen())

	next := CustodyTransferEvent{}
	event.NextEventID = &next.ID
	assert.False(t, event.IsOpen())
}

func TestVerifyChainLinksBreakPropagatesDownstream(t *testing.T) {
	chain := []CustodyTransferEvent{
		{Reason: "intake"},
		{Reason: "vault move", ChainBroken: true},
		{Reason: "vault move"},
		{Reason: "vault move"},
	}

	links := VerifyChainLinks(chain)

	require.Len(t, links, 4)
	assert.True(t, links[0].Trusted)
	assert.False(t, links[1].Trusted)
	// Downstream events are untrusted even though never marked themselves
	assert.False(t, links[2].Trusted)
	assert.False(t, links[3].Trusted)
}

func TestVerifyChainLinksCorrectiveEventRestoresTrust(t *testing.T) {
	chain := []CustodyTransferEvent{
		{Reason: "intake"},
		{Reason: "vault move", ChainBroken: true},
		{Reason: "vault move"},
		{Reason: "reconciliation", CorrectsBreak: true},
		{Reason: "vault move"},
	}

	links := VerifyChainLinks(chain)

	require.Len(t, links, 5)
	assert.False(t, links[2].Trusted)
	assert.True(t, links[3].Trusted)
	assert.True(t, links[4].Trusted)
}

func TestVerifyChainLinksBrokenCorrectiveRestoresNothing(t *testing.T) {
	chain := []CustodyTransferEvent{
		{Reason: "intake", ChainBroken: true},
		{Reason: "reconciliation", CorrectsBreak: true, ChainBroken: true},
		{Reason: "vault move"},
	}

	links := VerifyChainLinks(chain)

	require.Len(t, links, 3)
	assert.False(t, links[1].Trusted)
	assert.False(t, links[2].Trusted)
}

func TestChainFaultSentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrCustodyChainCorrupt, ErrCustodyTimestampOrder)
}
