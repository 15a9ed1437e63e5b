package models

import (
	"time"

	"github.com/google/uuid"
)

// DispositionMethod is how records in a series are disposed of at end of life
type DispositionMethod string

const (
	DispositionShred      DispositionMethod = "SHRED"
	DispositionIncinerate DispositionMethod = "INCINERATE"
	DispositionPulp       DispositionMethod = "PULP"
	DispositionDegauss    DispositionMethod = "DEGAUSS"
	DispositionSecureWipe DispositionMethod = "SECURE_WIPE"
)

// RecordSeries aggregates legal citations and carries a default retention
// duration used when no policy version applies. Code + name are unique
// together with the optional owning customer.
type RecordSeries struct {
	ID                    uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code                  string            `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_series_code_name_customer"`
	Name                  string            `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_series_code_name_customer"`
	CustomerID            *uuid.UUID        `json:"customer_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_series_code_name_customer"`
	DispositionMethod     DispositionMethod `json:"disposition_method" gorm:"type:varchar(20);not null"`
	DefaultRetentionValue int               `json:"default_retention_value" gorm:"not null;default:0"`
	DefaultRetentionUnit  RetentionUnit     `json:"default_retention_unit" gorm:"type:varchar(20);not null"`
	Category              string            `json:"category" gorm:"type:varchar(100)"`
	Citations             []LegalCitation   `json:"citations,omitempty" gorm:"many2many:record_series_citations"`
	CreatedAt             time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// DefaultRetention is the fallback rule for a series with no applicable
// policy version. A series with no citations falls back to this as well.
func (s *RecordSeries) DefaultRetention() RetentionRule {
	return RetentionRule{Value: s.DefaultRetentionValue, Unit: s.DefaultRetentionUnit}
}

// LongestCitationRetention returns the strictest (longest) retention among
// the attached citations, or the series default when none are attached.
// A permanent citation always wins.
func (s *RecordSeries) LongestCitationRetention(from time.Time) RetentionRule {
	if len(s.Citations) == 0 {
		return s.DefaultRetention()
	}

	best := s.Citations[0].Retention()
	bestDate, bestOk := best.EligibilityDate(from)
	if !bestOk {
		return best
	}
	for _, citation := range s.Citations[1:] {
		rule := citation.Retention()
		date, ok := rule.EligibilityDate(from)
		if !ok {
			return rule
		}
		if date.After(bestDate) {
			best = rule
			bestDate = date
		}
	}
	return best
}

func ValidDispositionMethod(method DispositionMethod) bool {
	switch method {
	case DispositionShred, DispositionIncinerate, DispositionPulp, DispositionDegauss, DispositionSecureWipe:
		return true
	}
	return false
}

type RecordSeriesCreateDto struct {
	Code                  string            `json:"code" validate:"required,max=50"`
	Name                  string            `json:"name" validate:"required,max=255"`
	CustomerID            *string           `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	DispositionMethod     DispositionMethod `json:"disposition_method" validate:"required,oneof=SHRED INCINERATE PULP DEGAUSS SECURE_WIPE"`
	DefaultRetentionValue int               `json:"default_retention_value" validate:"omitempty,min=0"`
	DefaultRetentionUnit  RetentionUnit     `json:"default_retention_unit" validate:"required,oneof=DAY WEEK MONTH YEAR PERMANENT"`
	Category              string            `json:"category" validate:"omitempty,max=100"`
	CitationIDs           []string          `json:"citation_ids,omitempty" validate:"omitempty,dive,uuid"`
}
