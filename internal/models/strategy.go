package models

import "github.com/google/uuid"

// Position is a player position code (QB, RB, WR, ...).
type Position string

// DraftStrategy governs how a team's auto-pick scores candidate players.
type DraftStrategy struct {
	TeamID         uuid.UUID            `json:"team_id"`
	DraftID        uuid.UUID            `json:"draft_id"`
	BPAWeight      int                  `json:"bpa_weight"`  // 0-100
	NeedWeight     int                  `json:"need_weight"` // 0-100
	PositionValues map[Position]float64 `json:"position_values,omitempty"`
	RiskTolerance  int                  `json:"risk_tolerance"` // 1-10; higher admits more flagged players
}

// TeamNeed records how urgently a team needs a position.
// Priority runs 1-10; lower is more urgent.
type TeamNeed struct {
	TeamID   uuid.UUID `json:"team_id"`
	Position Position  `json:"position"`
	Priority int       `json:"priority"`
}
