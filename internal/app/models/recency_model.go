package models

// TimeAxis is a logical time-axis key used by the recency/expiry query
// helper. Entities opt in by implementing TimeAxisMapper with an explicit
// column map; there is no reflection-based probing.
type TimeAxis string

const (
	TimeAxisCreate      TimeAxis = "create"
	TimeAxisEvent       TimeAxis = "event"
	TimeAxisDestruction TimeAxis = "destruction"
	TimeAxisExpiry      TimeAxis = "expiry"
	TimeAxisLastAccess  TimeAxis = "last_access"
)

// TimeAxisMapper maps logical time-axis keys to concrete timestamp columns.
// The map is read once at startup when the recency registry is built.
type TimeAxisMapper interface {
	TimeAxisColumns() map[TimeAxis]string
}

func (CustodyTransferEvent) TimeAxisColumns() map[TimeAxis]string {
	return map[TimeAxis]string{
		TimeAxisCreate: "created_at",
		TimeAxisEvent:  "custody_timestamp",
	}
}

func (DestructionRecord) TimeAxisColumns() map[TimeAxis]string {
	return map[TimeAxis]string{
		TimeAxisCreate:      "created_at",
		TimeAxisDestruction: "actual_date",
		TimeAxisExpiry:      "scheduled_date",
	}
}

func (AuditLogEntry) TimeAxisColumns() map[TimeAxis]string {
	return map[TimeAxis]string{
		TimeAxisCreate:     "timestamp",
		TimeAxisLastAccess: "timestamp",
	}
}

func (RetentionPolicyVersion) TimeAxisColumns() map[TimeAxis]string {
	return map[TimeAxis]string{
		TimeAxisCreate: "created_at",
		TimeAxisExpiry: "effective_date",
	}
}

func (LegalCitation) TimeAxisColumns() map[TimeAxis]string {
	return map[TimeAxis]string{
		TimeAxisCreate: "created_at",
	}
}
