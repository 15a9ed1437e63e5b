package services

import (
	"fmt"
	"time"

	"github.com/archivest/retain-core/internal/app/errors"
	"github.com/archivest/retain-core/internal/app/models"
	"gorm.io/gorm"
)

const TargetAuditEntry = "audit_log_entry"

// Canonical query windows, in days
const (
	WindowLastWeek      = 7
	WindowLastMonth     = 30
	WindowExpiryLookout = 30
)

// RecencyService builds "recently changed" and "expiring soon" filters over
// any registered entity without hardcoding field names per entity. The
// mapping from logical time-axis keys to columns is declared by each entity
// (models.TimeAxisMapper) and collected once here, at startup. An
// unregistered entity or axis yields a neutral zero-result filter, never an
// error: the query pipeline must not crash for an unconfigured entity.
type RecencyService struct {
	db       *gorm.DB
	registry map[string]map[models.TimeAxis]string
}

func NewRecencyService(db *gorm.DB) *RecencyService {
	mappers := map[string]models.TimeAxisMapper{
		TargetLegalCitation:     models.LegalCitation{},
		TargetPolicyVersion:     models.RetentionPolicyVersion{},
		TargetCustodyEvent:      models.CustodyTransferEvent{},
		TargetDestructionRecord: models.DestructionRecord{},
		TargetAuditEntry:        models.AuditLogEntry{},
	}

	registry := make(map[string]map[models.TimeAxis]string, len(mappers))
	for entity, mapper := range mappers {
		registry[entity] = mapper.TimeAxisColumns()
	}

	return &RecencyService{db: db, registry: registry}
}

// Column resolves the timestamp column for an entity's time axis
func (s *RecencyService) Column(entity string, axis models.TimeAxis) (string, bool) {
	axes, ok := s.registry[entity]
	if !ok {
		return "", false
	}
	column, ok := axes[axis]
	return column, ok
}

// Neutral is the zero-result scope applied for unconfigured entities
func Neutral(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// RecentCutoff is the lower bound for a "changed in last N days" filter
func RecentCutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// ExpiryWindow is the inclusive [today, today+days] date range for an
// "expiring soon" filter
func ExpiryWindow(now time.Time, days int) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today, today.AddDate(0, 0, days)
}

// ChangedWithin builds a "changed in the last N days" scope for the entity
func (s *RecencyService) ChangedWithin(entity string, axis models.TimeAxis, days int) func(*gorm.DB) *gorm.DB {
	column, ok := s.Column(entity, axis)
	if !ok {
		return Neutral
	}
	cutoff := RecentCutoff(time.Now(), days)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s >= ?", column), cutoff)
	}
}

// ExpiringWithin builds an "expiring within the next N days" scope, an
// inclusive date range starting today
func (s *RecencyService) ExpiringWithin(entity string, axis models.TimeAxis, days int) func(*gorm.DB) *gorm.DB {
	column, ok := s.Column(entity, axis)
	if !ok {
		return Neutral
	}
	start, end := ExpiryWindow(time.Now(), days)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s BETWEEN ? AND ?", column), start, end)
	}
}

// ExpiringDestructions lists destruction records whose scheduled date falls
// within the expiry lookout window
func (s *RecencyService) ExpiringDestructions() ([]models.DestructionRecord, error) {
	var records []models.DestructionRecord
	err := s.db.Scopes(s.ExpiringWithin(TargetDestructionRecord, models.TimeAxisExpiry, WindowExpiryLookout)).
		Order("scheduled_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list expiring destruction records")
	}
	return records, nil
}

// RecentCustodyEvents lists custody events recorded in the last N days
func (s *RecencyService) RecentCustodyEvents(days int) ([]models.CustodyTransferEvent, error) {
	if days <= 0 {
		days = WindowLastWeek
	}
	var events []models.CustodyTransferEvent
	err := s.db.Scopes(s.ChangedWithin(TargetCustodyEvent, models.TimeAxisEvent, days)).
		Order("custody_timestamp DESC").
		Find(&events).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list recent custody events")
	}
	return events, nil
}

// RecentAuditEntries lists audit entries appended in the last N days
func (s *RecencyService) RecentAuditEntries(days int) ([]models.AuditLogEntry, error) {
	if days <= 0 {
		days = WindowLastWeek
	}
	var entries []models.AuditLogEntry
	err := s.db.Scopes(s.ChangedWithin(TargetAuditEntry, models.TimeAxisCreate, days)).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to list recent audit entries")
	}
	return entries, nil
}
