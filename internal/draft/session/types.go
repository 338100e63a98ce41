package session

import (
	"time"

	"github.com/google/uuid"
)

// CreateSessionRequest carries the fields needed to open a session for a
// draft. One session exists per draft.
type CreateSessionRequest struct {
	ID              uuid.UUID
	DraftID         uuid.UUID
	TimePerPickSec  int
	AutoPickEnabled bool
}

// NextDeadline is the soonest armed deadline across all running sessions.
type NextDeadline struct {
	SessionID uuid.UUID  `json:"session_id"`
	DraftID   uuid.UUID  `json:"draft_id"`
	Deadline  *time.Time `json:"deadline"`
}
