package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DestructionStatus string

const (
	DestructionStatusDraft      DestructionStatus = "DRAFT"
	DestructionStatusInProgress DestructionStatus = "IN_PROGRESS"
	DestructionStatusCompleted  DestructionStatus = "COMPLETED"
	DestructionStatusVerified   DestructionStatus = "VERIFIED"
	DestructionStatusCertified  DestructionStatus = "CERTIFIED"
	DestructionStatusDisputed   DestructionStatus = "DISPUTED"
)

// destructionTransitions is the forward state machine. DISPUTED is reachable
// from every non-terminal state and is itself terminal: a disputed record is
// never re-entered into the forward flow.
var destructionTransitions = map[DestructionStatus][]DestructionStatus{
	DestructionStatusDraft:      {DestructionStatusInProgress},
	DestructionStatusInProgress: {DestructionStatusCompleted, DestructionStatusDisputed},
	DestructionStatusCompleted:  {DestructionStatusVerified, DestructionStatusDisputed},
	DestructionStatusVerified:   {DestructionStatusCertified, DestructionStatusDisputed},
	DestructionStatusCertified:  {},
	DestructionStatusDisputed:   {},
}

// CanTransitionDestruction reports whether a status change is allowed
func CanTransitionDestruction(from, to DestructionStatus) bool {
	for _, allowed := range destructionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// DestructionRecord is a destruction job over one or more physical items.
// Once past DRAFT the record can never be unlinked or deleted. The
// certificate number is allocated exactly once and never reassigned, even if
// the record is later disputed.
type DestructionRecord struct {
	ID                uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Method            DispositionMethod `json:"method" gorm:"type:varchar(20);not null"`
	Status            DestructionStatus `json:"status" gorm:"type:varchar(20);not null;default:'DRAFT'"`
	ScheduledDate     time.Time         `json:"scheduled_date" gorm:"type:date;not null"`
	ActualDate        *time.Time        `json:"actual_date,omitempty" gorm:"type:date"`
	WitnessRequired   bool              `json:"witness_required" gorm:"not null;default:false"`
	WitnessName       *string           `json:"witness_name,omitempty" gorm:"type:varchar(255)"`
	CertificateNumber *string           `json:"certificate_number,omitempty" gorm:"type:varchar(50);uniqueIndex"`
	CertifiedAt       *time.Time        `json:"certified_at,omitempty"`
	DisputeReason     *string           `json:"dispute_reason,omitempty" gorm:"type:text"`
	TotalWeightKg     *decimal.Decimal  `json:"total_weight_kg,omitempty" gorm:"type:decimal(12,3)"`
	Items             []DestructionItem `json:"items,omitempty" gorm:"foreignKey:DestructionRecordID"`
	CreatedAt         time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

// DestructionItem is one physical item or container covered by a destruction
// record. RecordDate is when the underlying record was closed; retention runs
// from it.
type DestructionItem struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DestructionRecordID uuid.UUID  `json:"destruction_record_id" gorm:"type:uuid;not null;index"`
	ItemRef             string     `json:"item_ref" gorm:"type:varchar(100);not null"`
	RecordSeriesID      uuid.UUID  `json:"record_series_id" gorm:"type:uuid;not null"`
	PolicyID            *uuid.UUID `json:"policy_id,omitempty" gorm:"type:uuid"`
	RecordDate          time.Time  `json:"record_date" gorm:"type:date;not null"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// IsTerminal reports whether no further transitions are possible
func (r *DestructionRecord) IsTerminal() bool {
	return r.Status == DestructionStatusCertified || r.Status == DestructionStatusDisputed
}

// Deletable: only a draft record may be removed; past DRAFT the record and
// its items are permanent.
func (r *DestructionRecord) Deletable() bool {
	return r.Status == DestructionStatusDraft
}

// CanDispute: any of in_progress/completed/verified may move to disputed
func (r *DestructionRecord) CanDispute() bool {
	return CanTransitionDestruction(r.Status, DestructionStatusDisputed)
}

// DestructionCertificate is the rendered payload of an issued certificate
type DestructionCertificate struct {
	CertificateNumber string            `json:"certificate_number"`
	RecordID          uuid.UUID         `json:"record_id"`
	Method            DispositionMethod `json:"method"`
	ScheduledDate     time.Time         `json:"scheduled_date"`
	ActualDate        *time.Time        `json:"actual_date,omitempty"`
	CertifiedAt       time.Time         `json:"certified_at"`
	WitnessName       *string           `json:"witness_name,omitempty"`
	TotalWeightKg     *decimal.Decimal  `json:"total_weight_kg,omitempty"`
	Items             []string          `json:"items"`
}

type DestructionCreateDto struct {
	Method          DispositionMethod          `json:"method" validate:"required,oneof=SHRED INCINERATE PULP DEGAUSS SECURE_WIPE"`
	ScheduledDate   time.Time                  `json:"scheduled_date" validate:"required"`
	WitnessRequired bool                       `json:"witness_required"`
	Items           []DestructionItemCreateDto `json:"items" validate:"required,min=1,dive"`
}

type DestructionItemCreateDto struct {
	ItemRef        string    `json:"item_ref" validate:"required,max=100"`
	RecordSeriesID string    `json:"record_series_id" validate:"required,uuid"`
	PolicyID       *string   `json:"policy_id,omitempty" validate:"omitempty,uuid"`
	RecordDate     time.Time `json:"record_date" validate:"required"`
}

type DestructionCompleteDto struct {
	ActualDate    *time.Time       `json:"actual_date,omitempty"`
	WitnessName   *string          `json:"witness_name,omitempty" validate:"omitempty,max=255"`
	TotalWeightKg *decimal.Decimal `json:"total_weight_kg,omitempty"`
}

type DestructionDisputeDto struct {
	Reason string `json:"reason" validate:"required"`
}

type DestructionRescheduleDto struct {
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}
