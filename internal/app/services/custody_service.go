package services

import (
	"fmt"
	"time"

	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustodyService maintains the chain-of-custody ledger. Appends are
// serialized per item: the open chain head is locked and its next-event link
// updated in the same transaction that creates the new event, so the
// two-row link mutation is atomic and the chain cannot fork.
type CustodyService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	auditService *AuditService
}

func NewCustodyService(db *gorm.DB, validator *infrastructures.Validator, auditService *AuditService) *CustodyService {
	s := &CustodyService{
		db:           db,
		validator:    validator,
		auditService: auditService,
	}

	auditService.RegisterResolver(TargetCustodyEvent, func(id uuid.UUID) (string, error) {
		var event models.CustodyTransferEvent
		if err := db.Select("item_ref").First(&event, "id = ?", id).Error; err != nil {
			return "", err
		}
		return "custody event for " + event.ItemRef, nil
	})

	return s
}

// buildTransferEvent assembles the event row for a transfer. The id is
// generated client side so the previous head's link can be written before
// the insert.
func buildTransferEvent(dto *models.CustodyTransferCreateDto, now time.Time) *models.CustodyTransferEvent {
	securityLevel := dto.SecurityLevel
	if securityLevel == "" {
		securityLevel = models.SecurityLevelStandard
	}
	timestamp := now
	if dto.CustodyTimestamp != nil {
		timestamp = *dto.CustodyTimestamp
	}

	return &models.CustodyTransferEvent{
		ID:                uuid.New(),
		ItemRef:           dto.ItemRef,
		CustodyTimestamp:  timestamp,
		FromActor:         dto.FromActor,
		ToActor:           dto.ToActor,
		WitnessActor:      dto.WitnessActor,
		WitnessRequired:   dto.WitnessRequired,
		SecurityLevel:     securityLevel,
		Reason:            dto.Reason,
		AuthorizationCode: dto.AuthorizationCode,
		CorrectsBreak:     dto.CorrectsBreak,
	}
}

// RecordTransfer appends a transfer event to the item's chain. Signatures
// are captured asynchronously afterwards via AttachSignature.
func (s *CustodyService) RecordTransfer(dto *models.CustodyTransferCreateDto, actor string) (*models.CustodyTransferEvent, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	event := buildTransferEvent(dto, time.Now())

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the open chain head for this item, if any
		var head models.CustodyTransferEvent
		headErr := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("item_ref = ? AND next_event_id IS NULL", dto.ItemRef).
			First(&head).Error
		if headErr != nil && headErr != gorm.ErrRecordNotFound {
			return errors.NewInternalServerError(headErr, "Failed to load custody chain head")
		}

		if headErr == nil {
			event.PreviousEventID = &head.ID

			// Close the previous head before inserting the new one so the
			// open-head unique index holds at every statement. The guard
			// keeps a raced append from silently forking the chain.
			link := tx.Model(&models.CustodyTransferEvent{}).
				Where("id = ? AND next_event_id IS NULL", head.ID).
				Update("next_event_id", event.ID)
			if link.Error != nil {
				return errors.NewInternalServerError(link.Error, "Failed to link custody chain")
			}
			if link.RowsAffected == 0 {
				return errors.NewConflictError("Custody chain advanced concurrently for this item")
			}
		}

		// A raced append this transaction could not see, first or not,
		// leaves a committed open head; the open-head index rejects the
		// second root.
		if err := tx.Create(event).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return errors.NewConflictError("Custody chain advanced concurrently for this item")
			}
			return errors.NewInternalServerError(err, "Failed to create custody event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetCustodyEvent, event.ID,
		fmt.Sprintf("Recorded custody transfer of %s from %s to %s", event.ItemRef, event.FromActor, event.ToActor))

	return event, nil
}

func (s *CustodyService) GetEvent(id string) (*models.CustodyTransferEvent, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid custody event ID format")
	}

	var event models.CustodyTransferEvent
	if err := s.db.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Custody event not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get custody event")
	}
	return &event, nil
}

// AttachSignature captures a signature for one of the event's roles
func (s *CustodyService) AttachSignature(id string, dto *models.SignatureAttachDto, actor string) (*models.CustodyTransferEvent, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	var column string
	switch dto.Role {
	case models.SignatureRoleFrom:
		column = "from_signature"
		event.FromSignature = &dto.Signature
	case models.SignatureRoleTo:
		column = "to_signature"
		event.ToSignature = &dto.Signature
	case models.SignatureRoleWitness:
		if event.WitnessActor == nil {
			return nil, errors.NewValidationError("Event has no witness to sign for")
		}
		column = "witness_signature"
		event.WitnessSignature = &dto.Signature
	default:
		return nil, errors.NewValidationError("Unknown signature role")
	}

	if err := s.db.Model(event).Update(column, dto.Signature).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to attach signature")
	}

	s.auditService.Record(actor, models.AuditEventUpdate, TargetCustodyEvent, event.ID,
		fmt.Sprintf("Attached %s signature to custody event for %s", dto.Role, event.ItemRef))

	return event, nil
}

// Verify marks the event compliance-verified. It does not retroactively fix
// a broken chain.
func (s *CustodyService) Verify(id string, actor string) (*models.CustodyTransferEvent, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if event.ComplianceVerified {
		return event, nil
	}

	if err := s.db.Model(event).Update("compliance_verified", true).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to verify custody event")
	}
	event.ComplianceVerified = true

	s.auditService.Record(actor, models.AuditEventUpdate, TargetCustodyEvent, event.ID,
		"Verified custody event for "+event.ItemRef)

	return event, nil
}

// BreakChain marks the chain broken at this event. The mark is permanent:
// there is no unbreak, only a corrective event appended later.
func (s *CustodyService) BreakChain(id string, dto *models.ChainBreakDto, actor string) (*models.CustodyTransferEvent, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	if event.ChainBroken {
		return nil, errors.NewUserError("Chain is already marked broken at this event")
	}

	updates := map[string]interface{}{
		"chain_broken":       true,
		"chain_break_reason": dto.Reason,
	}
	if err := s.db.Model(event).Updates(updates).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to mark chain broken")
	}
	event.ChainBroken = true
	event.ChainBreakReason = &dto.Reason

	s.auditService.Record(actor, models.AuditEventUpdate, TargetCustodyEvent, event.ID,
		fmt.Sprintf("Marked custody chain broken for %s: %s", event.ItemRef, dto.Reason))

	return event, nil
}

// GetChain returns an item's events in chain order, walking the linked
// structure from its first event.
func (s *CustodyService) GetChain(itemRef string) ([]models.CustodyTransferEvent, error) {
	var events []models.CustodyTransferEvent
	if err := s.db.Where("item_ref = ?", itemRef).Find(&events).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load custody chain")
	}
	if len(events) == 0 {
		return nil, errors.NewNotFoundError("No custody chain for item")
	}

	byID := make(map[uuid.UUID]*models.CustodyTransferEvent, len(events))
	var first *models.CustodyTransferEvent
	for i := range events {
		byID[events[i].ID] = &events[i]
		if events[i].PreviousEventID == nil {
			first = &events[i]
		}
	}
	if first == nil {
		return nil, errors.NewInternalServerError(models.ErrCustodyChainCorrupt, "Custody chain has no first event")
	}

	ordered := make([]models.CustodyTransferEvent, 0, len(events))
	for current := first; current != nil; {
		ordered = append(ordered, *current)
		if current.NextEventID == nil {
			break
		}
		next, ok := byID[*current.NextEventID]
		if !ok {
			break
		}
		current = next
	}
	return ordered, nil
}

// VerifyChain walks an item's chain and reports per-event trust. Once an
// event is broken every downstream event is untrusted until a corrective
// event closes the gap.
func (s *CustodyService) VerifyChain(itemRef string) ([]models.ChainLink, error) {
	chain, err := s.GetChain(itemRef)
	if err != nil {
		return nil, err
	}
	return models.VerifyChainLinks(chain), nil
}

// Duration returns the time the event's holder kept custody, in hours. A
// chain whose next event predates this one is corrupted data; the fault is
// surfaced, never clamped.
func (s *CustodyService) Duration(id string) (float64, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return 0, err
	}

	var next *models.CustodyTransferEvent
	if event.NextEventID != nil {
		var n models.CustodyTransferEvent
		if err := s.db.First(&n, "id = ?", *event.NextEventID).Error; err != nil {
			return 0, errors.NewInternalServerError(err, "Failed to load next custody event")
		}
		next = &n
	}

	hours, err := event.CustodyDuration(next, time.Now())
	if err != nil {
		return 0, errors.NewInternalServerError(err, "Custody chain timestamps are out of order")
	}
	return hours, nil
}
