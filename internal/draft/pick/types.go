package pick

import (
	"github.com/google/uuid"
)

// MakePickRequest assigns a player to an available pick slot.
type MakePickRequest struct {
	PickID   uuid.UUID
	PlayerID uuid.UUID
	Auto     bool // set when the orchestrator picks on a team's behalf
}
