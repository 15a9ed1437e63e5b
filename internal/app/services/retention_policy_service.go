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

// RetentionPolicyService manages policies and their immutable versions.
// Activation is serialized per policy: the current-version pointer is only
// ever swapped under a row lock with guarded updates, so concurrent
// activations cannot both succeed.
type RetentionPolicyService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	auditService *AuditService
}

func NewRetentionPolicyService(db *gorm.DB, validator *infrastructures.Validator, auditService *AuditService) *RetentionPolicyService {
	s := &RetentionPolicyService{
		db:           db,
		validator:    validator,
		auditService: auditService,
	}

	auditService.RegisterResolver(TargetRetentionPolicy, func(id uuid.UUID) (string, error) {
		var policy models.RetentionPolicy
		if err := db.Select("name").First(&policy, "id = ?", id).Error; err != nil {
			return "", err
		}
		return policy.Name, nil
	})
	auditService.RegisterResolver(TargetPolicyVersion, func(id uuid.UUID) (string, error) {
		var version models.RetentionPolicyVersion
		if err := db.Select("policy_id", "version_number").First(&version, "id = ?", id).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("version %d of policy %s", version.VersionNumber, version.PolicyID), nil
	})

	return s
}

func (s *RetentionPolicyService) CreatePolicy(dto *models.PolicyCreateDto, actor string) (*models.RetentionPolicy, error) {
	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	seriesID, err := uuid.Parse(dto.RecordSeriesID)
	if err != nil {
		return nil, errors.NewValidationError("Invalid record series ID format")
	}

	var series models.RecordSeries
	if err := s.db.First(&series, "id = ?", seriesID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Record series not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to load record series")
	}

	policy := &models.RetentionPolicy{
		Name:           dto.Name,
		RecordSeriesID: seriesID,
	}

	if err := s.db.Create(policy).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create retention policy")
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetRetentionPolicy, policy.ID,
		"Created retention policy "+policy.Name)

	return policy, nil
}

func (s *RetentionPolicyService) GetPolicy(id string) (*models.RetentionPolicy, error) {
	policyID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid policy ID format")
	}

	var policy models.RetentionPolicy
	if err := s.db.Preload("Versions", func(db *gorm.DB) *gorm.DB {
		return db.Order("version_number ASC")
	}).First(&policy, "id = ?", policyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Retention policy not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get retention policy")
	}
	return &policy, nil
}

// CreateVersion adds a new draft version. The effective date may not precede
// the currently active version's effective date (no back-dating below the
// version in force).
func (s *RetentionPolicyService) CreateVersion(policyID string, dto *models.PolicyVersionCreateDto, actor string) (*models.RetentionPolicyVersion, error) {
	parsedPolicyID, err := uuid.Parse(policyID)
	if err != nil {
		return nil, errors.NewValidationError("Invalid policy ID format")
	}

	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}
	if dto.RetentionUnit != models.RetentionUnitPermanent && dto.RetentionValue <= 0 {
		return nil, errors.NewValidationError("Retention value must be positive for non-permanent retention")
	}

	var version *models.RetentionPolicyVersion
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the policy row so version numbering is serialized per policy
		var policy models.RetentionPolicy
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&policy, "id = ?", parsedPolicyID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("Retention policy not found")
			}
			return errors.NewInternalServerError(err, "Failed to load retention policy")
		}

		if policy.CurrentVersionID != nil {
			var current models.RetentionPolicyVersion
			if err := tx.First(&current, "id = ?", *policy.CurrentVersionID).Error; err != nil {
				return errors.NewInternalServerError(err, "Failed to load current policy version")
			}
			if dto.EffectiveDate.Before(current.EffectiveDate) {
				return errors.NewValidationError("Effective date precedes the currently active version")
			}
		}

		var maxNumber int
		if err := tx.Model(&models.RetentionPolicyVersion{}).
			Where("policy_id = ?", policy.ID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to determine next version number")
		}

		version = &models.RetentionPolicyVersion{
			PolicyID:       policy.ID,
			VersionNumber:  maxNumber + 1,
			State:          models.PolicyVersionStateDraft,
			ChangeSummary:  dto.ChangeSummary,
			EffectiveDate:  dto.EffectiveDate,
			Author:         dto.Author,
			RetentionValue: dto.RetentionValue,
			RetentionUnit:  dto.RetentionUnit,
		}

		if err := tx.Create(version).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create policy version")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(actor, models.AuditEventCreate, TargetPolicyVersion, version.ID,
		fmt.Sprintf("Created draft version %d of policy %s", version.VersionNumber, parsedPolicyID))

	return version, nil
}

// Activate promotes a draft version to active, demotes the previously active
// version to archived with a superseded_by back-reference, and swaps the
// policy's current-version pointer. The swap is a compare-and-swap: a raced
// activation on the same policy fails with ConflictError instead of
// last-writer-wins.
func (s *RetentionPolicyService) Activate(versionID string, actor string) (*models.RetentionPolicyVersion, error) {
	parsedVersionID, err := uuid.Parse(versionID)
	if err != nil {
		return nil, errors.NewValidationError("Invalid version ID format")
	}

	var version models.RetentionPolicyVersion
	var previousState models.PolicyVersionState
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&version, "id = ?", parsedVersionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("Policy version not found")
			}
			return errors.NewInternalServerError(err, "Failed to load policy version")
		}

		// Lock the policy row; all activations for this policy serialize here
		var policy models.RetentionPolicy
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&policy, "id = ?", version.PolicyID).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to load retention policy")
		}
		expectedCurrent := policy.CurrentVersionID

		// Guarded promotion: only a draft can become active. Zero rows means
		// a concurrent activation already moved this version on.
		promote := tx.Model(&models.RetentionPolicyVersion{}).
			Where("id = ? AND state = ?", version.ID, models.PolicyVersionStateDraft).
			Update("state", models.PolicyVersionStateActive)
		if promote.Error != nil {
			return errors.NewInternalServerError(promote.Error, "Failed to activate policy version")
		}
		if promote.RowsAffected == 0 {
			if version.State == models.PolicyVersionStateDraft {
				return errors.NewConflictError("Policy version was activated concurrently")
			}
			return errors.NewUserError("Only a draft version can be activated")
		}

		// Demote the previously active version and point it at its successor
		if expectedCurrent != nil {
			demote := tx.Model(&models.RetentionPolicyVersion{}).
				Where("id = ? AND state = ?", *expectedCurrent, models.PolicyVersionStateActive).
				Updates(map[string]interface{}{
					"state":            models.PolicyVersionStateArchived,
					"superseded_by_id": version.ID,
				})
			if demote.Error != nil {
				return errors.NewInternalServerError(demote.Error, "Failed to archive superseded version")
			}
		}

		// Compare-and-swap the current-version pointer
		var swap *gorm.DB
		if expectedCurrent == nil {
			swap = tx.Model(&models.RetentionPolicy{}).
				Where("id = ? AND current_version_id IS NULL", policy.ID).
				Update("current_version_id", version.ID)
		} else {
			swap = tx.Model(&models.RetentionPolicy{}).
				Where("id = ? AND current_version_id = ?", policy.ID, *expectedCurrent).
				Update("current_version_id", version.ID)
		}
		if swap.Error != nil {
			return errors.NewInternalServerError(swap.Error, "Failed to update current version pointer")
		}
		if swap.RowsAffected == 0 {
			return errors.NewConflictError("Another version was activated concurrently for this policy")
		}

		previousState = version.State
		version.State = models.PolicyVersionStateActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(actor, models.AuditEventUpdate, TargetPolicyVersion, version.ID,
		describeTransition("Policy version", fmt.Sprintf("%d", version.VersionNumber),
			string(previousState), string(models.PolicyVersionStateActive)))

	return &version, nil
}

// Archive manually retires a version without promoting a replacement, e.g.
// for an emergency rollback. If the version is the policy's current version
// the pointer is cleared.
func (s *RetentionPolicyService) Archive(versionID string, actor string) (*models.RetentionPolicyVersion, error) {
	parsedVersionID, err := uuid.Parse(versionID)
	if err != nil {
		return nil, errors.NewValidationError("Invalid version ID format")
	}

	var version models.RetentionPolicyVersion
	var previousState models.PolicyVersionState
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&version, "id = ?", parsedVersionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("Policy version not found")
			}
			return errors.NewInternalServerError(err, "Failed to load policy version")
		}

		var policy models.RetentionPolicy
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&policy, "id = ?", version.PolicyID).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to load retention policy")
		}

		if !version.CanArchive() {
			return errors.NewUserError("Only a draft or active version can be archived")
		}
		previousState = version.State

		archive := tx.Model(&models.RetentionPolicyVersion{}).
			Where("id = ? AND state IN ?", version.ID,
				[]models.PolicyVersionState{models.PolicyVersionStateDraft, models.PolicyVersionStateActive}).
			Update("state", models.PolicyVersionStateArchived)
		if archive.Error != nil {
			return errors.NewInternalServerError(archive.Error, "Failed to archive policy version")
		}
		if archive.RowsAffected == 0 {
			return errors.NewConflictError("Policy version changed concurrently")
		}

		if policy.CurrentVersionID != nil && *policy.CurrentVersionID == version.ID {
			clear := tx.Model(&models.RetentionPolicy{}).
				Where("id = ? AND current_version_id = ?", policy.ID, version.ID).
				Update("current_version_id", nil)
			if clear.Error != nil {
				return errors.NewInternalServerError(clear.Error, "Failed to clear current version pointer")
			}
		}

		version.State = models.PolicyVersionStateArchived
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditService.Record(actor, models.AuditEventUpdate, TargetPolicyVersion, version.ID,
		describeTransition("Policy version", fmt.Sprintf("%d", version.VersionNumber),
			string(previousState), string(models.PolicyVersionStateArchived)))

	return &version, nil
}

// DeleteVersion removes a version. Only drafts may be deleted.
func (s *RetentionPolicyService) DeleteVersion(versionID string, actor string) error {
	parsedVersionID, err := uuid.Parse(versionID)
	if err != nil {
		return errors.NewValidationError("Invalid version ID format")
	}

	var version models.RetentionPolicyVersion
	if err := s.db.First(&version, "id = ?", parsedVersionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewNotFoundError("Policy version not found")
		}
		return errors.NewInternalServerError(err, "Failed to load policy version")
	}

	if version.State != models.PolicyVersionStateDraft {
		return errors.NewUserError("Only a draft version can be deleted")
	}

	result := s.db.Where("id = ? AND state = ?", version.ID, models.PolicyVersionStateDraft).
		Delete(&models.RetentionPolicyVersion{})
	if result.Error != nil {
		return errors.NewInternalServerError(result.Error, "Failed to delete policy version")
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("Policy version changed concurrently")
	}

	s.auditService.Record(actor, models.AuditEventDelete, TargetPolicyVersion, version.ID,
		fmt.Sprintf("Deleted draft version %d of policy %s", version.VersionNumber, version.PolicyID))

	return nil
}

// EffectiveRetention resolves the retention duration in force for a policy
// on the given date: the latest non-draft version whose effective date is on
// or before asOf, preferring the highest version number on equal dates. When
// no version applies the owning record series default is returned.
func (s *RetentionPolicyService) EffectiveRetention(policyID uuid.UUID, asOf time.Time) (models.RetentionRule, error) {
	var version models.RetentionPolicyVersion
	err := s.db.Where("policy_id = ? AND state <> ? AND effective_date <= ?",
		policyID, models.PolicyVersionStateDraft, asOf).
		Order("effective_date DESC, version_number DESC").
		First(&version).Error
	if err == nil {
		return version.Retention(), nil
	}
	if err != gorm.ErrRecordNotFound {
		return models.RetentionRule{}, errors.NewInternalServerError(err, "Failed to resolve effective retention")
	}

	var policy models.RetentionPolicy
	if err := s.db.Preload("RecordSeries").First(&policy, "id = ?", policyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.RetentionRule{}, errors.NewNotFoundError("Retention policy not found")
		}
		return models.RetentionRule{}, errors.NewInternalServerError(err, "Failed to load retention policy")
	}
	return policy.RecordSeries.DefaultRetention(), nil
}

// SeriesDefaultRetention returns the fallback retention for a record series
func (s *RetentionPolicyService) SeriesDefaultRetention(seriesID uuid.UUID) (models.RetentionRule, error) {
	var series models.RecordSeries
	if err := s.db.First(&series, "id = ?", seriesID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.RetentionRule{}, errors.NewNotFoundError("Record series not found")
		}
		return models.RetentionRule{}, errors.NewInternalServerError(err, "Failed to load record series")
	}
	return series.DefaultRetention(), nil
}
