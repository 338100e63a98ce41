// Package events defines the session event payloads shared by the sequencer,
// trade ledger, orchestrator, and the outbox relay.
package events

import (
	"time"
)

// PickStartedPayload is the payload for a PickStarted event, appended each
// time a pick goes on the clock.
type PickStartedPayload struct {
	OverallPick    int       `json:"overall_pick"`
	StartedAt      time.Time `json:"started_at"`
	TimeoutAt      time.Time `json:"timeout_at"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

// PickMadePayload is the payload for PickMade and AutoPickMade events.
type PickMadePayload struct {
	PickID      string    `json:"pick_id"`
	TeamID      string    `json:"team_id"`
	PlayerID    string    `json:"player_id"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	Auto        bool      `json:"auto"`
	MadeAt      time.Time `json:"made_at"`
}

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftPausedPayload is the payload for a DraftPaused event.
type DraftPausedPayload struct {
	DraftID      string    `json:"draft_id"`
	PausedAt     time.Time `json:"paused_at"`
	RemainingSec float64   `json:"remaining_sec"`
}

// DraftResumedPayload is the payload for a DraftResumed event.
type DraftResumedPayload struct {
	DraftID      string    `json:"draft_id"`
	ResumedAt    time.Time `json:"resumed_at"`
	RemainingSec float64   `json:"remaining_sec"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
}

// TradePayload is the payload for TradeProposed, TradeAccepted, and
// TradeRejected events.
type TradePayload struct {
	TradeID       string   `json:"trade_id"`
	FromTeamID    string   `json:"from_team_id"`
	ToTeamID      string   `json:"to_team_id"`
	FromTeamValue float64  `json:"from_team_value"`
	ToTeamValue   float64  `json:"to_team_value"`
	PickIDs       []string `json:"pick_ids"`
}
