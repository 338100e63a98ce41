package outbox

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Repository persists draft events in Postgres. Rows are append-only; only
// sent_at is ever updated.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// InsertEvent appends an event, resolving the session from the draft. Fails
// NotFound when the draft has no session yet.
func (r *Repository) InsertEvent(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload json.RawMessage) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_events (id, session_id, event_type, payload)
		SELECT $1, s.id, $3, $4
		FROM draft_sessions s
		WHERE s.draft_id = $2`,
		uuid.New(), draftID, eventType, []byte(payload))
	if err != nil {
		return apperrors.Internal("failed to insert draft event", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("no session exists for draft %s", draftID)
	}
	return nil
}

// FetchUnsentEvents returns up to limit unpublished events, oldest first.
func (r *Repository) FetchUnsentEvents(ctx context.Context, limit int) ([]models.DraftEvent, error) {
	return r.queryEvents(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_events
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
}

// MarkEventSent stamps an event as published.
func (r *Repository) MarkEventSent(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE draft_events
		SET sent_at = now()
		WHERE id = $1 AND sent_at IS NULL`, id)
	if err != nil {
		return apperrors.Internal("failed to mark event sent", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("unsent event %s not found", id)
	}
	return nil
}

func (r *Repository) ListEventsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.DraftEvent, error) {
	return r.queryEvents(ctx, `
		SELECT id, session_id, event_type, payload, created_at, sent_at
		FROM draft_events
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID)
}

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]models.DraftEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("failed to query draft events", err)
	}
	defer rows.Close()

	var events []models.DraftEvent
	for rows.Next() {
		var (
			e       models.DraftEvent
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &payload, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, apperrors.Internal("failed to scan draft event", err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate draft events", err)
	}
	return events, nil
}
