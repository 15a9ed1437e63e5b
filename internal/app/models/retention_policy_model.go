package models

import (
	"time"

	"github.com/google/uuid"
)

type PolicyVersionState string

const (
	PolicyVersionStateDraft    PolicyVersionState = "DRAFT"
	PolicyVersionStateActive   PolicyVersionState = "ACTIVE"
	PolicyVersionStateArchived PolicyVersionState = "ARCHIVED"
)

// RetentionPolicy is a named, long-lived container for an ordered sequence of
// immutable versions. CurrentVersionID is the only mutable pointer and is
// swapped with compare-and-swap discipline: at most one version is current.
type RetentionPolicy struct {
	ID               uuid.UUID               `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name             string                  `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	RecordSeriesID   uuid.UUID               `json:"record_series_id" gorm:"type:uuid;not null;index"`
	CurrentVersionID *uuid.UUID              `json:"current_version_id,omitempty" gorm:"type:uuid"`
	Versions         []RetentionPolicyVersion `json:"versions,omitempty" gorm:"foreignKey:PolicyID"`
	RecordSeries     RecordSeries            `json:"record_series,omitempty" gorm:"foreignKey:RecordSeriesID"`
	CreatedAt        time.Time               `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time               `json:"updated_at" gorm:"autoUpdateTime"`
}

// RetentionPolicyVersion is immutable once archived. VersionNumber is unique
// and monotonically increasing per policy.
type RetentionPolicyVersion struct {
	ID             uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PolicyID       uuid.UUID          `json:"policy_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_policy_version_number"`
	VersionNumber  int                `json:"version_number" gorm:"not null;uniqueIndex:idx_policy_version_number"`
	State          PolicyVersionState `json:"state" gorm:"type:varchar(20);not null"`
	ChangeSummary  string             `json:"change_summary" gorm:"type:text;not null"`
	EffectiveDate  time.Time          `json:"effective_date" gorm:"type:date;not null"`
	Author         string             `json:"author" gorm:"type:varchar(255);not null"`
	RetentionValue int                `json:"retention_value" gorm:"not null;default:0"`
	RetentionUnit  RetentionUnit      `json:"retention_unit" gorm:"type:varchar(20);not null"`
	SupersededByID *uuid.UUID         `json:"superseded_by_id,omitempty" gorm:"type:uuid"`
	CreatedAt      time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
}

// Retention is the duration this version mandates from its effective date
func (v *RetentionPolicyVersion) Retention() RetentionRule {
	return RetentionRule{Value: v.RetentionValue, Unit: v.RetentionUnit}
}

// IsCurrent reports whether this version is the policy's version in force
func (v *RetentionPolicyVersion) IsCurrent(policy *RetentionPolicy) bool {
	return policy.CurrentVersionID != nil && *policy.CurrentVersionID == v.ID
}

// CanActivate requires draft state; activation is the only path to active
func (v *RetentionPolicyVersion) CanActivate() bool {
	return v.State == PolicyVersionStateDraft
}

// CanArchive allows manual retirement from draft or active. Archived is
// terminal: an archived version is never mutated again.
func (v *RetentionPolicyVersion) CanArchive() bool {
	return v.State == PolicyVersionStateDraft || v.State == PolicyVersionStateActive
}

// AppliesAsOf reports whether this version governs records on the given date.
// Draft versions never apply.
func (v *RetentionPolicyVersion) AppliesAsOf(asOf time.Time) bool {
	if v.State == PolicyVersionStateDraft {
		return false
	}
	return !v.EffectiveDate.After(asOf)
}

type PolicyCreateDto struct {
	Name           string `json:"name" validate:"required,max=255"`
	RecordSeriesID string `json:"record_series_id" validate:"required,uuid"`
}

type PolicyVersionCreateDto struct {
	ChangeSummary  string        `json:"change_summary" validate:"required"`
	EffectiveDate  time.Time     `json:"effective_date" validate:"required"`
	Author         string        `json:"author" validate:"required,max=255"`
	RetentionValue int           `json:"retention_value" validate:"omitempty,min=0"`
	RetentionUnit  RetentionUnit `json:"retention_unit" validate:"required,oneof=DAY WEEK MONTH YEAR PERMANENT"`
}
