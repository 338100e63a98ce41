package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus defines the status of a pick trade.
type TradeStatus string

const (
	TradeStatusProposed TradeStatus = "PROPOSED"
	TradeStatusAccepted TradeStatus = "ACCEPTED"
	TradeStatusRejected TradeStatus = "REJECTED"
)

// TradeDirection marks which side of a trade a pick sits on.
type TradeDirection string

const (
	TradeDirectionFromTeam TradeDirection = "FROM_TEAM"
	TradeDirectionToTeam   TradeDirection = "TO_TEAM"
)

// PickTrade represents a proposed or settled pick-for-pick trade between two
// teams in a session. Values are captured at proposal time from the active
// value chart and never recomputed.
type PickTrade struct {
	ID              uuid.UUID   `json:"id"`
	SessionID       uuid.UUID   `json:"session_id"`
	FromTeamID      uuid.UUID   `json:"from_team_id"`
	ToTeamID        uuid.UUID   `json:"to_team_id"`
	Status          TradeStatus `json:"status"`
	FromTeamValue   float64     `json:"from_team_value"`
	ToTeamValue     float64     `json:"to_team_value"`
	ValueDifference float64     `json:"value_difference"`
	ProposedAt      time.Time   `json:"proposed_at"`
	RespondedAt     *time.Time  `json:"responded_at,omitempty"`
}

// PickTradeDetail is one pick included in a trade.
type PickTradeDetail struct {
	ID        uuid.UUID      `json:"id"`
	TradeID   uuid.UUID      `json:"trade_id"`
	PickID    uuid.UUID      `json:"pick_id"`
	Direction TradeDirection `json:"direction"`
	PickValue float64        `json:"pick_value"`
}
