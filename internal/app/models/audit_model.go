package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType classifies a tracked action
type AuditEventType string

const (
	AuditEventCreate       AuditEventType = "CREATE"
	AuditEventUpdate       AuditEventType = "UPDATE"
	AuditEventDelete       AuditEventType = "DELETE"
	AuditEventAccess       AuditEventType = "ACCESS"
	AuditEventExport       AuditEventType = "EXPORT"
	AuditEventLoginSuccess AuditEventType = "LOGIN_SUCCESS"
	AuditEventLoginFailure AuditEventType = "LOGIN_FAILURE"
)

// AuditLogEntry is a write-once record of an action against any tracked
// entity. Entries are owned by the log itself and outlive the entities they
// describe: the target is a soft reference by type + id. Production code
// paths may only create entries; mutation requires the maintenance bypass.
type AuditLogEntry struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Actor       string         `json:"actor" gorm:"type:varchar(255);not null"`
	EventType   AuditEventType `json:"event_type" gorm:"type:varchar(20);not null;index"`
	Timestamp   time.Time      `json:"timestamp" gorm:"not null;index"`
	TargetType  *string        `json:"target_type,omitempty" gorm:"type:varchar(50);index:idx_audit_target"`
	TargetID    *uuid.UUID     `json:"target_id,omitempty" gorm:"type:uuid;index:idx_audit_target"`
	Description string         `json:"description" gorm:"type:text;not null"`
	IPAddress   *string        `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	ClientInfo  *string        `json:"client_info,omitempty" gorm:"type:varchar(255)"`
}

// NotAccessible is the sentinel returned when a target's display name cannot
// be resolved (deleted target, failing lookup). Resolution degrades, it
// never errors.
const NotAccessible = "(not accessible)"

func ValidAuditEventType(eventType AuditEventType) bool {
	switch eventType {
	case AuditEventCreate, AuditEventUpdate, AuditEventDelete, AuditEventAccess,
		AuditEventExport, AuditEventLoginSuccess, AuditEventLoginFailure:
		return true
	}
	return false
}

type AuditLogCreateDto struct {
	Actor       string         `json:"actor" validate:"required,max=255"`
	EventType   AuditEventType `json:"event_type" validate:"required,oneof=CREATE UPDATE DELETE ACCESS EXPORT LOGIN_SUCCESS LOGIN_FAILURE"`
	Description string         `json:"description" validate:"required"`
	TargetType  *string        `json:"target_type,omitempty" validate:"omitempty,max=50"`
	TargetID    *string        `json:"target_id,omitempty" validate:"omitempty,uuid"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
}

type AuditLogUpdateDto struct {
	Description *string `json:"description,omitempty"`
	Actor       *string `json:"actor,omitempty" validate:"omitempty,max=255"`
}
