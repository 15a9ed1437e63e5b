package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCustodyTimestampOrder signals a chain event timestamped before its
// predecessor, which can only come from corrupted data.
var ErrCustodyTimestampOrder = errors.New("custody chain timestamps out of order")

// ErrCustodyChainCorrupt signals a stored chain with no root event.
var ErrCustodyChainCorrupt = errors.New("custody chain has no root event")

// SignatureRole identifies which party a custody signature belongs to
type SignatureRole string

const (
	SignatureRoleFrom    SignatureRole = "FROM"
	SignatureRoleTo      SignatureRole = "TO"
	SignatureRoleWitness SignatureRole = "WITNESS"
)

type SecurityLevel string

const (
	SecurityLevelStandard     SecurityLevel = "STANDARD"
	SecurityLevelConfidential SecurityLevel = "CONFIDENTIAL"
	SecurityLevelRestricted   SecurityLevel = "RESTRICTED"
)

// Compliance score weightings. Preserved from the legacy scoring sheet;
// confirm with the domain owner before treating them as load-bearing.
const (
	scoreBase          = 50
	scoreFromSignature = 15
	scoreToSignature   = 15
	scoreWitnessSig    = 10
	scoreVerified      = 10
	scoreChainBroken   = -30
	scoreReason        = 5
	scoreAuthCode      = 5
)

// CustodyTransferEvent is one node in the singly-linked custody chain of a
// physical item. Events are shared references, not an ownership tree: the
// chain is navigable via PreviousEventID/NextEventID. An event with no next
// event is the open end of its chain; the partial unique index on ItemRef
// holds the invariant that each item has at most one open end, so a raced
// append cannot fork the chain.
type CustodyTransferEvent struct {
	ID                 uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ItemRef            string        `json:"item_ref" gorm:"type:varchar(100);not null;index;uniqueIndex:idx_custody_open_head,where:next_event_id IS NULL"`
	CustodyTimestamp   time.Time     `json:"custody_timestamp" gorm:"not null"`
	FromActor          string        `json:"from_actor" gorm:"type:varchar(255);not null"`
	ToActor            string        `json:"to_actor" gorm:"type:varchar(255);not null"`
	WitnessActor       *string       `json:"witness_actor,omitempty" gorm:"type:varchar(255)"`
	WitnessRequired    bool          `json:"witness_required" gorm:"not null;default:false"`
	SecurityLevel      SecurityLevel `json:"security_level" gorm:"type:varchar(20);not null;default:'STANDARD'"`
	Reason             string        `json:"reason" gorm:"type:text;not null"`
	AuthorizationCode  *string       `json:"authorization_code,omitempty" gorm:"type:varchar(100)"`
	FromSignature      *string       `json:"from_signature,omitempty" gorm:"type:text"`
	ToSignature        *string       `json:"to_signature,omitempty" gorm:"type:text"`
	WitnessSignature   *string       `json:"witness_signature,omitempty" gorm:"type:text"`
	PreviousEventID    *uuid.UUID    `json:"previous_event_id,omitempty" gorm:"type:uuid"`
	NextEventID        *uuid.UUID    `json:"next_event_id,omitempty" gorm:"type:uuid"`
	ChainBroken        bool          `json:"chain_broken" gorm:"not null;default:false"`
	ChainBreakReason   *string       `json:"chain_break_reason,omitempty" gorm:"type:text"`
	CorrectsBreak      bool          `json:"corrects_break" gorm:"not null;default:false"`
	ComplianceVerified bool          `json:"compliance_verified" gorm:"not null;default:false"`
	CreatedAt          time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsOpen reports whether this event is the open end of its item's chain
func (e *CustodyTransferEvent) IsOpen() bool {
	return e.NextEventID == nil
}

// ComplianceScore computes the point score for this event, clamped to [0,100]
func (e *CustodyTransferEvent) ComplianceScore() int {
	score := scoreBase
	if e.FromSignature != nil && *e.FromSignature != "" {
		score += scoreFromSignature
	}
	if e.ToSignature != nil && *e.ToSignature != "" {
		score += scoreToSignature
	}
	if e.WitnessSignature != nil && *e.WitnessSignature != "" {
		score += scoreWitnessSig
	}
	if e.ComplianceVerified {
		score += scoreVerified
	}
	if e.ChainBroken {
		score += scoreChainBroken
	}
	if e.Reason != "" {
		score += scoreReason
	}
	if e.AuthorizationCode != nil && *e.AuthorizationCode != "" {
		score += scoreAuthCode
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// CustodyDuration returns the time this event's holder kept custody, in
// hours. For the open end of the chain the duration runs until now. A next
// event timestamped before this one is a data-integrity fault and is
// surfaced, never clamped.
func (e *CustodyTransferEvent) CustodyDuration(next *CustodyTransferEvent, now time.Time) (float64, error) {
	end := now
	if next != nil {
		end = next.CustodyTimestamp
	}
	d := end.Sub(e.CustodyTimestamp)
	if d < 0 {
		return 0, ErrCustodyTimestampOrder
	}
	return d.Hours(), nil
}

// SignaturesComplete reports whether all required signatures are present.
// The witness signature is required only when the event demands a witness.
func (e *CustodyTransferEvent) SignaturesComplete() bool {
	if e.FromSignature == nil || *e.FromSignature == "" {
		return false
	}
	if e.ToSignature == nil || *e.ToSignature == "" {
		return false
	}
	if e.WitnessRequired && (e.WitnessSignature == nil || *e.WitnessSignature == "") {
		return false
	}
	return true
}

func ValidSignatureRole(role SignatureRole) bool {
	switch role {
	case SignatureRoleFrom, SignatureRoleTo, SignatureRoleWitness:
		return true
	}
	return false
}

func ValidSecurityLevel(level SecurityLevel) bool {
	switch level {
	case SecurityLevelStandard, SecurityLevelConfidential, SecurityLevelRestricted:
		return true
	}
	return false
}

// ChainLink is one event of a verified chain walk together with its trust
// status. Trusted is false for every event downstream of a break until a
// corrective event closes the gap.
type ChainLink struct {
	Event   *CustodyTransferEvent `json:"event"`
	Trusted bool                  `json:"trusted"`
	Score   int                   `json:"score"`
}

// VerifyChainLinks walks a chain in order and reports per-event trust. A
// broken event invalidates itself and everything downstream until a
// corrective event closes the gap; a corrective event that is itself broken
// restores nothing.
func VerifyChainLinks(chain []CustodyTransferEvent) []ChainLink {
	links := make([]ChainLink, 0, len(chain))
	trusted := true
	for i := range chain {
		event := &chain[i]
		if event.CorrectsBreak && !event.ChainBroken {
			trusted = true
		}
		if event.ChainBroken {
			trusted = false
		}
		links = append(links, ChainLink{
			Event:   event,
			Trusted: trusted && !event.ChainBroken,
			Score:   event.ComplianceScore(),
		})
	}
	return links
}

type CustodyTransferCreateDto struct {
	ItemRef           string        `json:"item_ref" validate:"required,max=100"`
	FromActor         string        `json:"from_actor" validate:"required,max=255"`
	ToActor           string        `json:"to_actor" validate:"required,max=255"`
	WitnessActor      *string       `json:"witness_actor,omitempty" validate:"omitempty,max=255"`
	WitnessRequired   bool          `json:"witness_required"`
	SecurityLevel     SecurityLevel `json:"security_level" validate:"omitempty,oneof=STANDARD CONFIDENTIAL RESTRICTED"`
	Reason            string        `json:"reason" validate:"required"`
	AuthorizationCode *string       `json:"authorization_code,omitempty" validate:"omitempty,max=100"`
	CustodyTimestamp  *time.Time    `json:"custody_timestamp,omitempty"`
	CorrectsBreak     bool          `json:"corrects_break"`
}

type SignatureAttachDto struct {
	Role      SignatureRole `json:"role" validate:"required,oneof=FROM TO WITNESS"`
	Signature string        `json:"signature" validate:"required"`
}

type ChainBreakDto struct {
	Reason string `json:"reason" validate:"required"`
}
