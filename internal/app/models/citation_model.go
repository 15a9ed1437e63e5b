package models

import (
	"time"

	"github.com/google/uuid"
)

// RetentionUnit is the unit of a retention duration
type RetentionUnit string

const (
	RetentionUnitDay       RetentionUnit = "DAY"
	RetentionUnitWeek      RetentionUnit = "WEEK"
	RetentionUnitMonth     RetentionUnit = "MONTH"
	RetentionUnitYear      RetentionUnit = "YEAR"
	RetentionUnitPermanent RetentionUnit = "PERMANENT"
)

// RetentionRule is a retention duration as value + unit
type RetentionRule struct {
	Value int           `json:"value"`
	Unit  RetentionUnit `json:"unit"`
}

// IsPermanent reports whether records under this rule may never be destroyed
func (r RetentionRule) IsPermanent() bool {
	return r.Unit == RetentionUnitPermanent
}

// EligibilityDate returns the earliest date a record closed at `from` may be
// destroyed. The second return is false for permanent retention.
func (r RetentionRule) EligibilityDate(from time.Time) (time.Time, bool) {
	switch r.Unit {
	case RetentionUnitDay:
		return from.AddDate(0, 0, r.Value), true
	case RetentionUnitWeek:
		return from.AddDate(0, 0, r.Value*7), true
	case RetentionUnitMonth:
		return from.AddDate(0, r.Value, 0), true
	case RetentionUnitYear:
		return from.AddDate(r.Value, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// ValidRetentionUnit checks a retention unit value
func ValidRetentionUnit(unit RetentionUnit) bool {
	switch unit {
	case RetentionUnitDay, RetentionUnitWeek, RetentionUnitMonth, RetentionUnitYear, RetentionUnitPermanent:
		return true
	}
	return false
}

// LegalCitation is a named legal/regulatory citation carrying a retention
// duration. A citation becomes immutable once an activated policy version
// references its record series; that rule is enforced in the catalog service.
type LegalCitation struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string        `json:"code" gorm:"type:varchar(50);not null;uniqueIndex"`
	Title          string        `json:"title" gorm:"type:varchar(255);not null"`
	LawReference   string        `json:"law_reference" gorm:"type:varchar(255)"`
	Section        string        `json:"section" gorm:"type:varchar(100)"`
	Jurisdiction   string        `json:"jurisdiction" gorm:"type:varchar(100)"`
	RetentionValue int           `json:"retention_value" gorm:"not null;default:0"`
	RetentionUnit  RetentionUnit `json:"retention_unit" gorm:"type:varchar(20);not null"`
	Description    *string       `json:"description,omitempty" gorm:"type:text"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// Retention returns the citation's retention duration as a rule
func (c *LegalCitation) Retention() RetentionRule {
	return RetentionRule{Value: c.RetentionValue, Unit: c.RetentionUnit}
}

type LegalCitationCreateDto struct {
	Code           string        `json:"code" validate:"required,max=50"`
	Title          string        `json:"title" validate:"required,max=255"`
	LawReference   string        `json:"law_reference" validate:"omitempty,max=255"`
	Section        string        `json:"section" validate:"omitempty,max=100"`
	Jurisdiction   string        `json:"jurisdiction" validate:"omitempty,max=100"`
	RetentionValue int           `json:"retention_value" validate:"omitempty,min=0"`
	RetentionUnit  RetentionUnit `json:"retention_unit" validate:"required,oneof=DAY WEEK MONTH YEAR PERMANENT"`
	Description    *string       `json:"description,omitempty"`
}

type LegalCitationUpdateDto struct {
	Title          *string        `json:"title,omitempty" validate:"omitempty,max=255"`
	LawReference   *string        `json:"law_reference,omitempty" validate:"omitempty,max=255"`
	Section        *string        `json:"section,omitempty" validate:"omitempty,max=100"`
	Jurisdiction   *string        `json:"jurisdiction,omitempty" validate:"omitempty,max=100"`
	RetentionValue *int           `json:"retention_value,omitempty" validate:"omitempty,min=0"`
	RetentionUnit  *RetentionUnit `json:"retention_unit,omitempty" validate:"omitempty,oneof=DAY WEEK MONTH YEAR PERMANENT"`
	Description    *string        `json:"description,omitempty"`
}
