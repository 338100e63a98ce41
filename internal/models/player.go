package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskFlag marks a scouting concern on a player.
type RiskFlag string

const (
	RiskFlagInjury    RiskFlag = "INJURY"
	RiskFlagCharacter RiskFlag = "CHARACTER"
)

// Player represents a draft-eligible player.
type Player struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"full_name"`
	Position      Position   `json:"position"`
	EligibleYear  int        `json:"eligible_year"`
	ConsensusRank int        `json:"consensus_rank"` // 1 = best
	ScoutingGrade float64    `json:"scouting_grade"` // 0-100
	RiskFlags     []RiskFlag `json:"risk_flags,omitempty"`
	RiskSeverity  int        `json:"risk_severity"` // 0 when unflagged, else 1-10
	CreatedAt     time.Time  `json:"created_at"`
}
