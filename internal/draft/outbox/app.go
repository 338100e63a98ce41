// Package outbox is the append-only draft event log. Core operations record
// events best-effort; the relay drains unsent rows to NATS JetStream so
// downstream consumers (live draft boards, audit) see every state change.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/models"
)

// EventRepository defines what the outbox app layer needs from the event
// repository.
type EventRepository interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload json.RawMessage) error
	FetchUnsentEvents(ctx context.Context, limit int) ([]models.DraftEvent, error)
	MarkEventSent(ctx context.Context, id uuid.UUID) error
	ListEventsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftEvent, error)
}

// App appends draft events to the log. It implements events.Recorder for the
// draft, pick, session, and trade apps.
type App struct {
	repo EventRepository
}

func NewApp(repo EventRepository) *App {
	return &App{
		repo: repo,
	}
}

// Record appends one event, keyed by the draft whose session it belongs to.
func (a *App) Record(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	if err := a.repo.InsertEvent(ctx, draftID, eventType, data); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}

	log.Debug().
		Str("draft_id", draftID.String()).
		Str("event_type", string(eventType)).
		Msg("draft event recorded")
	return nil
}

// ListEventsBySession returns a session's full event history in append order,
// for audit and replay.
func (a *App) ListEventsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftEvent, error) {
	return a.repo.ListEventsBySession(ctx, sessionID)
}
