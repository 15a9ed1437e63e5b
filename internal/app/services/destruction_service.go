package services

import (
	"context"
	"fmt"
	"time"

	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/archivest/retain-core/pkg/sequence"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// certificateSequence is the named sequence certificate numbers come from
const certificateSequence = "destruction_certificate"

// DestructionService drives the destruction job state machine:
// draft -> in_progress -> completed -> verified -> certified, with disputed
// reachable from every non-terminal state. Transitions are guarded updates
// so a raced transition loses with ConflictError instead of double-applying.
type DestructionService struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	auditService  *AuditService
	policyService *RetentionPolicyService
	allocator     sequence.Allocator
}

func NewDestructionService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	auditService *AuditService,
	policyService *RetentionPolicyService,
	allocator sequence.Allocator,
) *DestructionService {
	s := &DestructionService{
		db:            db,
		validator:     validator,
		auditService:  auditService,
		policyService: policyService,
		allocator:     allocator,
	}

	auditService.RegisterResolver(TargetDestructionRecord, func(id uuid.UUID) (string, error) {
		var record models.DestructionRecord
		if err := db.Select("method", "scheduled_date").First(&record, "id = ?", id).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("%s destruction scheduled %s", record.Method, record.ScheduledDate.Format("2006-01-02")), nil
	})

	return s
}

func (s *DestructionService) Create(dto *models.DestructionCreateDto, actor string) (*models.DestructionRecord, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	items := make([]models.DestructionItem, 0, len(dto.Items))
	for _, itemDto := range dto.Items {
		seriesID, err := uuid.Parse(itemDto.RecordSeriesID)
		if err != nil {
			return nil, errors.NewValidationError("Invalid record series ID format")
		}
		var policyID *uuid.UUID
		if itemDto.PolicyID != nil {
			parsed, err := uuid.Parse(*itemDto.PolicyID)
			if err != nil {
				return nil, errors.NewValidationError("Invalid policy ID format")
			}
			policyID = &parsed
		}
		items = append(items, models.DestructionItem{
			ItemRef:        itemDto.ItemRef,
			RecordSeriesID: seriesID,
			PolicyID:       policyID,
			RecordDate:     itemDto.RecordDate,
		})
	}

	record := &models.DestructionRecord{
		Method:          dto.Method,
		Status:          models.DestructionStatusDraft,
		ScheduledDate:   dto.ScheduledDate,
		WitnessRequired: dto.WitnessRequired,
		Items:           items,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create destruction record")
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetDestructionRecord, record.ID,
		fmt.Sprintf("Created destruction record (%s, %d items)", record.Method, len(record.Items)))

	return record, nil
}

func (s *DestructionService) Get(id string) (*models.DestructionRecord, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid destruction record ID format")
	}

	var record models.DestructionRecord
	if err := s.db.Preload("Items").First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Destruction record not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get destruction record")
	}
	return &record, nil
}

func (s *DestructionService) List(pagination *models.PaginationRequest) (*models.Pagination[[]models.DestructionRecord], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.DestructionRecord{}).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count destruction records")
	}

	var records []models.DestructionRecord
	if err := s.db.Preload("Items").Order("scheduled_date DESC").
		Limit(pagination.Limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list destruction records")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))
	return &models.Pagination[[]models.DestructionRecord]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      records,
	}, nil
}

// Reschedule changes the scheduled date. Only drafts may be rescheduled.
func (s *DestructionService) Reschedule(id string, dto *models.DestructionRescheduleDto, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}
	if record.Status != models.DestructionStatusDraft {
		return nil, errors.NewUserError("Only a draft destruction record can be rescheduled")
	}

	if err := s.db.Model(record).Update("scheduled_date", dto.ScheduledDate).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to reschedule destruction record")
	}
	record.ScheduledDate = dto.ScheduledDate

	s.auditService.Record(actor, models.AuditEventUpdate, TargetDestructionRecord, record.ID,
		"Rescheduled destruction to "+dto.ScheduledDate.Format("2006-01-02"))

	return record, nil
}

// EligibilityDate computes the combined retention-eligibility date of the
// record's items: the latest per-item eligibility, resolved against the
// item's policy as of the scheduled date (series default when no version
// applies). The second return is false when any item is under permanent
// retention and the job may never run.
func (s *DestructionService) EligibilityDate(record *models.DestructionRecord) (time.Time, bool, error) {
	var combined time.Time
	for i := range record.Items {
		item := &record.Items[i]

		var rule models.RetentionRule
		var err error
		if item.PolicyID != nil {
			rule, err = s.policyService.EffectiveRetention(*item.PolicyID, record.ScheduledDate)
		} else {
			rule, err = s.policyService.SeriesDefaultRetention(item.RecordSeriesID)
		}
		if err != nil {
			return time.Time{}, false, err
		}

		eligible, ok := rule.EligibilityDate(item.RecordDate)
		if !ok {
			return time.Time{}, false, nil
		}
		if eligible.After(combined) {
			combined = eligible
		}
	}
	return combined, true, nil
}

// Start moves draft -> in_progress. The items' combined eligibility date
// must be on or before the scheduled destruction date.
func (s *DestructionService) Start(id string, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionDestruction(record.Status, models.DestructionStatusInProgress) {
		return nil, errors.NewUserError("Destruction can only be started from draft")
	}

	eligibility, destructible, err := s.EligibilityDate(record)
	if err != nil {
		return nil, err
	}
	if !destructible {
		return nil, errors.NewUserError("Items are under permanent retention and may never be destroyed")
	}
	if eligibility.After(record.ScheduledDate) {
		return nil, errors.NewUserError(fmt.Sprintf(
			"Items are not retention-eligible until %s", eligibility.Format("2006-01-02")))
	}

	if err := s.transition(record, models.DestructionStatusDraft, models.DestructionStatusInProgress, nil, actor); err != nil {
		return nil, err
	}
	return record, nil
}

// Complete moves in_progress -> completed. A witnessed job requires a
// witness name.
func (s *DestructionService) Complete(id string, dto *models.DestructionCompleteDto, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}
	if !models.CanTransitionDestruction(record.Status, models.DestructionStatusCompleted) {
		return nil, errors.NewUserError("Destruction can only be completed from in_progress")
	}
	if record.WitnessRequired && (dto.WitnessName == nil || *dto.WitnessName == "") {
		return nil, errors.NewValidationError("Witness name is required for this destruction")
	}

	actualDate := time.Now()
	if dto.ActualDate != nil {
		actualDate = *dto.ActualDate
	}
	extra := map[string]interface{}{
		"actual_date": actualDate,
	}
	if dto.WitnessName != nil {
		extra["witness_name"] = *dto.WitnessName
	}
	if dto.TotalWeightKg != nil {
		extra["total_weight_kg"] = *dto.TotalWeightKg
	}

	if err := s.transition(record, models.DestructionStatusInProgress, models.DestructionStatusCompleted, extra, actor); err != nil {
		return nil, err
	}
	record.ActualDate = &actualDate
	record.WitnessName = dto.WitnessName
	record.TotalWeightKg = dto.TotalWeightKg
	return record, nil
}

// Verify moves completed -> verified. Re-verifying an already-verified
// record is a no-op: same end state, no second audit entry.
func (s *DestructionService) Verify(id string, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if record.Status == models.DestructionStatusVerified {
		return record, nil
	}
	if !models.CanTransitionDestruction(record.Status, models.DestructionStatusVerified) {
		return nil, errors.NewUserError("Only a completed destruction can be verified")
	}

	if err := s.transition(record, models.DestructionStatusCompleted, models.DestructionStatusVerified, nil, actor); err != nil {
		return nil, err
	}
	return record, nil
}

// IssueCertificate moves verified -> certified and allocates the certificate
// number exactly once. A repeat or raced issuance fails with ConflictError
// and never reallocates.
func (s *DestructionService) IssueCertificate(ctx context.Context, id string, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if record.Status == models.DestructionStatusCertified {
		return nil, errors.NewConflictError("Certificate already issued for this destruction record")
	}
	if !models.CanTransitionDestruction(record.Status, models.DestructionStatusCertified) {
		return nil, errors.NewUserError("Only a verified destruction can be certified")
	}

	number, err := s.allocator.Next(ctx, certificateSequence)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to allocate certificate number")
	}
	certificateNumber := fmt.Sprintf("DC-%08d", number)
	certifiedAt := time.Now()

	// Guarded issuance: exactly one caller wins; a gap in the sequence is
	// acceptable, a duplicate certificate number is not.
	result := s.db.Model(&models.DestructionRecord{}).
		Where("id = ? AND status = ? AND certificate_number IS NULL", record.ID, models.DestructionStatusVerified).
		Updates(map[string]interface{}{
			"status":             models.DestructionStatusCertified,
			"certificate_number": certificateNumber,
			"certified_at":       certifiedAt,
		})
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to issue certificate")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError("Certificate was issued concurrently for this destruction record")
	}

	record.Status = models.DestructionStatusCertified
	record.CertificateNumber = &certificateNumber
	record.CertifiedAt = &certifiedAt

	s.auditService.Record(actor, models.AuditEventUpdate, TargetDestructionRecord, record.ID,
		fmt.Sprintf("%s; issued certificate %s",
			describeTransition("Destruction record", record.ID.String(),
				string(models.DestructionStatusVerified), string(models.DestructionStatusCertified)),
			certificateNumber))

	return record, nil
}

// Dispute moves any of in_progress/completed/verified to disputed. A
// disputed record never re-enters the forward flow; a fresh record is
// created to retry.
func (s *DestructionService) Dispute(id string, dto *models.DestructionDisputeDto, actor string) (*models.DestructionRecord, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}
	if !record.CanDispute() {
		return nil, errors.NewUserError("Destruction record cannot be disputed in its current state")
	}

	from := record.Status
	result := s.db.Model(&models.DestructionRecord{}).
		Where("id = ? AND status = ?", record.ID, from).
		Updates(map[string]interface{}{
			"status":         models.DestructionStatusDisputed,
			"dispute_reason": dto.Reason,
		})
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to dispute destruction record")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError("Destruction record changed concurrently")
	}

	record.Status = models.DestructionStatusDisputed
	record.DisputeReason = &dto.Reason

	s.auditService.Record(actor, models.AuditEventUpdate, TargetDestructionRecord, record.ID,
		describeTransition("Destruction record", record.ID.String(), string(from), string(models.DestructionStatusDisputed))+
			"; reason: "+dto.Reason)

	return record, nil
}

// Delete removes a destruction record. Only drafts are deletable; past
// draft the record and its items are permanent.
func (s *DestructionService) Delete(id string, actor string) error {
	record, err := s.Get(id)
	if err != nil {
		return err
	}
	if !record.Deletable() {
		return errors.NewUserError("Only a draft destruction record can be deleted")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status = ?", record.ID, models.DestructionStatusDraft).
			Delete(&models.DestructionRecord{})
		if result.Error != nil {
			return errors.NewInternalServerError(result.Error, "Failed to delete destruction record")
		}
		if result.RowsAffected == 0 {
			return errors.NewConflictError("Destruction record changed concurrently")
		}
		if err := tx.Where("destruction_record_id = ?", record.ID).Delete(&models.DestructionItem{}).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to delete destruction items")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditService.Record(actor, models.AuditEventDelete, TargetDestructionRecord, record.ID,
		"Deleted draft destruction record")

	return nil
}

// Certificate renders the certificate payload of a certified record
func (s *DestructionService) Certificate(id string) (*models.DestructionCertificate, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.DestructionStatusCertified || record.CertificateNumber == nil || record.CertifiedAt == nil {
		return nil, errors.NewUserError("No certificate has been issued for this destruction record")
	}

	itemRefs := make([]string, 0, len(record.Items))
	for _, item := range record.Items {
		itemRefs = append(itemRefs, item.ItemRef)
	}

	return &models.DestructionCertificate{
		CertificateNumber: *record.CertificateNumber,
		RecordID:          record.ID,
		Method:            record.Method,
		ScheduledDate:     record.ScheduledDate,
		ActualDate:        record.ActualDate,
		CertifiedAt:       *record.CertifiedAt,
		WitnessName:       record.WitnessName,
		TotalWeightKg:     record.TotalWeightKg,
		Items:             itemRefs,
	}, nil
}

// transition applies a guarded status change and emits its audit entry
func (s *DestructionService) transition(record *models.DestructionRecord, from, to models.DestructionStatus, extra map[string]interface{}, actor string) error {
	updates := map[string]interface{}{"status": to}
	for column, value := range extra {
		updates[column] = value
	}

	result := s.db.Model(&models.DestructionRecord{}).
		Where("id = ? AND status = ?", record.ID, from).
		Updates(updates)
	if result.Error != nil {
		return errors.NewInternalServerError(result.Error, "Failed to update destruction record")
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("Destruction record changed concurrently")
	}

	record.Status = to

	s.auditService.Record(actor, models.AuditEventUpdate, TargetDestructionRecord, record.ID,
		describeTransition("Destruction record", record.ID.String(), string(from), string(to)))

	return nil
}
