package services

import (
	"fmt"
	"time"

	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"github.com/archivest/retain-core/internal/infrastructures"
	"github.com/archivest/retain-core/pkg/maintenance"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit target entity types, used for soft references and name resolution
const (
	TargetLegalCitation     = "legal_citation"
	TargetRecordSeries      = "record_series"
	TargetRetentionPolicy   = "retention_policy"
	TargetPolicyVersion     = "retention_policy_version"
	TargetCustodyEvent      = "custody_transfer_event"
	TargetDestructionRecord = "destruction_record"
)

// NameResolverFunc looks up the current display name of a target entity
type NameResolverFunc func(id uuid.UUID) (string, error)

// AuditService owns the append-only audit log. Appends are best-effort: a
// failed insert is logged and swallowed so it never rolls back the business
// operation that triggered it. Mutation of existing entries requires a
// maintenance authorization; production code paths only create.
type AuditService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
	resolvers map[string]NameResolverFunc
}

func NewAuditService(db *gorm.DB, validator *infrastructures.Validator) *AuditService {
	return &AuditService{
		db:        db,
		validator: validator,
		resolvers: make(map[string]NameResolverFunc),
	}
}

// RegisterResolver installs a display-name lookup for a target entity type.
// Called once at startup by the owning service.
func (s *AuditService) RegisterResolver(targetType string, fn NameResolverFunc) {
	s.resolvers[targetType] = fn
}

// LogEvent appends an entry and returns its id. Best-effort: on any failure
// the error is logged and the zero id returned; the caller's operation is
// never affected.
func (s *AuditService) LogEvent(dto *models.AuditLogCreateDto, ipAddress, clientInfo *string) uuid.UUID {
	if err := s.validator.Validate(dto); err != nil {
		infrastructures.GetLogger().Warnf("audit entry dropped: %v", err)
		return uuid.Nil
	}

	timestamp := time.Now()
	if dto.Timestamp != nil {
		timestamp = *dto.Timestamp
	}

	var targetID *uuid.UUID
	if dto.TargetID != nil {
		parsed, err := uuid.Parse(*dto.TargetID)
		if err != nil {
			infrastructures.GetLogger().Warnf("audit entry dropped: invalid target id %q", *dto.TargetID)
			return uuid.Nil
		}
		targetID = &parsed
	}

	entry := &models.AuditLogEntry{
		Actor:       dto.Actor,
		EventType:   dto.EventType,
		Timestamp:   timestamp,
		TargetType:  dto.TargetType,
		TargetID:    targetID,
		Description: dto.Description,
		IPAddress:   ipAddress,
		ClientInfo:  clientInfo,
	}

	if err := s.db.Create(entry).Error; err != nil {
		infrastructures.GetLogger().Errorf("failed to append audit entry: %v", err)
		return uuid.Nil
	}

	return entry.ID
}

// Record is the internal append path used by the domain services for
// lifecycle events. Same best-effort semantics as LogEvent.
func (s *AuditService) Record(actor string, eventType models.AuditEventType, targetType string, targetID uuid.UUID, description string) uuid.UUID {
	entry := &models.AuditLogEntry{
		Actor:       actor,
		EventType:   eventType,
		Timestamp:   time.Now(),
		TargetType:  &targetType,
		TargetID:    &targetID,
		Description: description,
	}

	if err := s.db.Create(entry).Error; err != nil {
		infrastructures.GetLogger().Errorf("failed to append audit entry: %v", err)
		return uuid.Nil
	}

	return entry.ID
}

// GetEntry returns a single entry by id
func (s *AuditService) GetEntry(id string) (*models.AuditLogEntry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.NewValidationError("Invalid audit entry ID format")
	}

	var entry models.AuditLogEntry
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Audit entry not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get audit entry")
	}
	return &entry, nil
}

// GetEntries retrieves audit entries with pagination, newest first
func (s *AuditService) GetEntries(pagination *models.PaginationRequest) (*models.Pagination[[]models.AuditLogEntry], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.AuditLogEntry{}).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count audit entries")
	}

	var entries []models.AuditLogEntry
	if err := s.db.Order("timestamp DESC").Limit(pagination.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit entries")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.AuditLogEntry]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      entries,
	}, nil
}

// UpdateEntry mutates an existing entry. Only the maintenance bypass may do
// this; everything else fails with ImmutableRecordError.
func (s *AuditService) UpdateEntry(id string, dto *models.AuditLogUpdateDto, auth *maintenance.Authorization) (*models.AuditLogEntry, error) {
	if !auth.Granted() {
		return nil, errors.NewImmutableRecordError("Audit log entries are immutable")
	}

	entry, err := s.GetEntry(id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(dto); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Actor != nil {
		updates["actor"] = *dto.Actor
	}
	if len(updates) == 0 {
		return entry, nil
	}

	if err := s.db.Model(entry).Updates(updates).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update audit entry")
	}
	return entry, nil
}

// DeleteEntry removes an existing entry. Same maintenance gate as UpdateEntry.
func (s *AuditService) DeleteEntry(id string, auth *maintenance.Authorization) error {
	if !auth.Granted() {
		return errors.NewImmutableRecordError("Audit log entries are immutable")
	}

	entry, err := s.GetEntry(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete audit entry")
	}
	return nil
}

// ResolveTargetName looks up the current display name of an entry's target.
// Best-effort: a missing target, missing resolver or failing lookup yields
// the NotAccessible sentinel, never an error.
func (s *AuditService) ResolveTargetName(entry *models.AuditLogEntry) string {
	if entry.TargetType == nil || entry.TargetID == nil {
		return models.NotAccessible
	}
	resolver, ok := s.resolvers[*entry.TargetType]
	if !ok {
		return models.NotAccessible
	}
	name, err := resolver(*entry.TargetID)
	if err != nil || name == "" {
		return models.NotAccessible
	}
	return name
}

// describeTransition formats a state-change description for lifecycle audit entries
func describeTransition(entity, ref string, from, to string) string {
	return fmt.Sprintf("%s %s: %s -> %s", entity, ref, from, to)
}
