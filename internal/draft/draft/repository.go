package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Repository persists drafts in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const draftColumns = "id, year, status, settings, total_picks, started_at, completed_at, created_at, updated_at"

func (r *Repository) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error) {
	settingsBytes, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft settings: %w", err)
	}

	totalPicks := req.Settings.Rounds * req.Settings.PicksPerRound
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO drafts (id, year, status, settings, total_picks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+draftColumns,
		req.ID, req.Year, models.DraftStatusNotStarted, settingsBytes, totalPicks)

	draft, err := scanDraft(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, apperrors.Duplicate("draft %s already exists", req.ID)
		}
		return nil, apperrors.Internal("failed to create draft", err)
	}
	return draft, nil
}

func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("draft %s not found", id)
		}
		return nil, apperrors.Internal("failed to get draft", err)
	}
	return draft, nil
}

// TransitionStatus updates status only when the stored status matches one of
// from. started_at is stamped on the first move to IN_PROGRESS and
// completed_at on the move to COMPLETED; a rejected guard leaves the row
// untouched and returns InvalidState.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from []models.DraftStatus, to models.DraftStatus) (*models.Draft, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE drafts
		SET status = $2,
		    started_at = CASE WHEN $2 = 'IN_PROGRESS' AND started_at IS NULL THEN now() ELSE started_at END,
		    completed_at = CASE WHEN $2 = 'COMPLETED' THEN now() ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+draftColumns,
		id, string(to), pq.Array(fromStrs))

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("draft %s is not in a state allowing transition to %s", id, to)
		}
		return nil, apperrors.Internal("failed to transition draft status", err)
	}
	return draft, nil
}

func (r *Repository) UpdateDraftSettings(ctx context.Context, id uuid.UUID, settings models.DraftSettings) (*models.Draft, error) {
	settingsBytes, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft settings: %w", err)
	}

	totalPicks := settings.Rounds * settings.PicksPerRound
	row := r.db.QueryRowContext(ctx, `
		UPDATE drafts
		SET settings = $2, total_picks = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+draftColumns,
		id, settingsBytes, totalPicks)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("draft %s not found", id)
		}
		return nil, apperrors.Internal("failed to update draft settings", err)
	}
	return draft, nil
}

func (r *Repository) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return apperrors.Internal("failed to delete draft", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("draft %s not found", id)
	}
	return nil
}

func scanDraft(row *sql.Row) (*models.Draft, error) {
	var (
		draft         models.Draft
		settingsBytes []byte
		startedAt     sql.NullTime
		completedAt   sql.NullTime
	)
	err := row.Scan(&draft.ID, &draft.Year, &draft.Status, &settingsBytes, &draft.TotalPicks,
		&startedAt, &completedAt, &draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settingsBytes, &draft.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft settings: %w", err)
	}
	if startedAt.Valid {
		draft.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		draft.CompletedAt = &completedAt.Time
	}
	return &draft, nil
}
