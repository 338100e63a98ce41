package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a state-changing action recorded in the session log.
type EventType string

const (
	EventDraftStarted    EventType = "DraftStarted"
	EventDraftPaused     EventType = "DraftPaused"
	EventDraftResumed    EventType = "DraftResumed"
	EventDraftCompleted  EventType = "DraftCompleted"
	EventPickStarted     EventType = "PickStarted"
	EventPickMade        EventType = "PickMade"
	EventAutoPickMade    EventType = "AutoPickMade"
	EventTradeProposed   EventType = "TradeProposed"
	EventTradeAccepted   EventType = "TradeAccepted"
	EventTradeRejected   EventType = "TradeRejected"
)

// DraftEvent is one append-only log entry for a session. Events are recorded
// best-effort: core operations never fail because a log write failed.
type DraftEvent struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	EventType EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}
