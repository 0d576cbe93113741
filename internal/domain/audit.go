package domain

import (
	"encoding/json"
	"time"
)

// AuditRecord is a write-only trace of one business operation.
type AuditRecord struct {
	ID         string
	Operation  string
	ActorID    *string
	Outcome    string // success or failure
	ErrorCode  *string
	DurationMS int64
	Metadata   json.RawMessage
	RecordedAt time.Time
}
