package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRetentionRuleEligibilityDate(t *testing.T) {
	from := date(2024, time.January, 1)

	tests := []struct {
		name string
		rule RetentionRule
		want time.Time
	}{
		{"days", RetentionRule{Value: 30, Unit: RetentionUnitDay}, date(2024, time.January, 31)},
		{"weeks", RetentionRule{Value: 2, Unit: RetentionUnitWeek}, date(2024, time.January, 15)},
		{"months", RetentionRule{Value: 6, Unit: RetentionUnitMonth}, date(2024, time.July, 1)},
		{"years", RetentionRule{Value: 7, Unit: RetentionUnitYear}, date(2031, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.EligibilityDate(from)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetentionRulePermanentNeverEligible(t *testing.T) {
	rule := RetentionRule{Value: 0, Unit: RetentionUnitPermanent}

	assert.True(t, rule.IsPermanent())

	_, ok := rule.EligibilityDate(date(2024, time.January, 1))
	assert.False(t, ok)
}

func TestValidRetentionUnit(t *testing.T) {
	for _, unit := range []RetentionUnit{RetentionUnitDay, RetentionUnitWeek, RetentionUnitMonth, RetentionUnitYear, RetentionUnitPermanent} {
		assert.True(t, ValidRetentionUnit(unit), string(unit))
	}
	assert.False(t, ValidRetentionUnit("DECADE"))
	assert.False(t, ValidRetentionUnit(""))
}
