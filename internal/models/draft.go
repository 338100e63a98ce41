package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusNotStarted DraftStatus = "NOT_STARTED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// OrderPolicy defines how teams map to pick slots across rounds.
type OrderPolicy string

const (
	// OrderPolicyStraight applies the draft order identically every round.
	OrderPolicyStraight OrderPolicy = "STRAIGHT"
	// OrderPolicySnake reverses the draft order on even rounds.
	OrderPolicySnake OrderPolicy = "SNAKE"
)

// DraftSettings holds JSONB configuration for drafts.
type DraftSettings struct {
	Rounds             int         `json:"rounds"`
	PicksPerRound      int         `json:"picks_per_round"`
	TimePerPickSec     int         `json:"time_per_pick_sec"`
	OrderPolicy        OrderPolicy `json:"order_policy,omitempty"`
	ThirdRoundReversal bool        `json:"third_round_reversal,omitempty"`
}

// Draft represents a draft instance.
type Draft struct {
	ID          uuid.UUID     `json:"id"`
	Year        int           `json:"year"`
	Status      DraftStatus   `json:"status"`
	Settings    DraftSettings `json:"settings"`
	TotalPicks  int           `json:"total_picks"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
