package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick represents a single pick slot in a draft.
type DraftPick struct {
	ID          uuid.UUID  `json:"id"`
	DraftID     uuid.UUID  `json:"draft_id"`
	Round       int        `json:"round"`
	Pick        int        `json:"pick"`         // pick number in the round
	OverallPick int        `json:"overall_pick"` // pick number overall
	TeamID      uuid.UUID  `json:"team_id"`      // current owner; changes on trade
	PlayerID    *uuid.UUID `json:"player_id,omitempty"` // nil until picked
	PickedAt    *time.Time `json:"picked_at,omitempty"`
}

// Available reports whether the pick has not yet been made.
func (p DraftPick) Available() bool {
	return p.PlayerID == nil
}
