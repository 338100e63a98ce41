package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus defines the clock state of a draft session, tracked
// independently of the draft's own coarse status.
type SessionStatus string

const (
	SessionStatusPending  SessionStatus = "PENDING"
	SessionStatusRunning  SessionStatus = "RUNNING"
	SessionStatusPaused   SessionStatus = "PAUSED"
	SessionStatusFinished SessionStatus = "FINISHED"
)

// DraftSession tracks the live clock for one active draft.
//
// The countdown is explicit state rather than a blocking wait: Deadline is set
// while the clock is armed, and RemainingSec holds the unexpired balance while
// paused so a resume continues from where the pause left off.
type DraftSession struct {
	ID                uuid.UUID     `json:"id"`
	DraftID           uuid.UUID     `json:"draft_id"`
	Status            SessionStatus `json:"status"`
	CurrentPickNumber int           `json:"current_pick_number"` // overall index on the clock
	TimePerPickSec    int           `json:"time_per_pick_sec"`
	AutoPickEnabled   bool          `json:"auto_pick_enabled"`
	Deadline          *time.Time    `json:"deadline,omitempty"`
	RemainingSec      *float64      `json:"remaining_sec,omitempty"` // set only while paused
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
