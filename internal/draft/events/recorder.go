package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/models"
)

// Recorder appends a session event for a draft. Implementations are
// best-effort sinks: a returned error is for the caller to log, never a
// reason to fail the operation that produced the event.
type Recorder interface {
	Record(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload any) error
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, uuid.UUID, models.EventType, any) error {
	return nil
}
