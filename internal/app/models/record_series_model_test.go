package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLongestCitationRetentionFallsBackToDefault(t *testing.T) {
	series := RecordSeries{
		DefaultRetentionValue: 5,
		DefaultRetentionUnit:  RetentionUnitYear,
	}

	rule := series.LongestCitationRetention(date(2024, time.January, 1))

	assert.Equal(t, RetentionRule{Value: 5, Unit: RetentionUnitYear}, rule)
}

func TestLongestCitationRetentionPicksStrictest(t *testing.T) {
	series := RecordSeries{
		DefaultRetentionValue: 1,
		DefaultRetentionUnit:  RetentionUnitYear,
		Citations: []LegalCitation{
			{Code: "TAX-101", RetentionValue: 3, RetentionUnit: RetentionUnitYear},
			{Code: "HIPAA-164", RetentionValue: 10, RetentionUnit: RetentionUnitYear},
			{Code: "SOX-802", RetentionValue: 60, RetentionUnit: RetentionUnitMonth},
		},
	}

	rule := series.LongestCitationRetention(date(2024, time.January, 1))

	assert.Equal(t, RetentionRule{Value: 10, Unit: RetentionUnitYear}, rule)
}

func TestLongestCitationRetentionPermanentWins(t *testing.T) {
	series := RecordSeries{
		Citations: []LegalCitation{
			{Code: "TAX-101", RetentionValue: 3, RetentionUnit: RetentionUnitYear},
			{Code: "DEED-1", RetentionUnit: RetentionUnitPermanent},
			{Code: "HIPAA-164", RetentionValue: 10, RetentionUnit: RetentionUnitYear},
		},
	}

	rule := series.LongestCitationRetention(date(2024, time.January, 1))

	assert.True(t, rule.IsPermanent())
}
