package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Repository persists draft sessions in Postgres. draft_id carries a unique
// constraint: one session per draft.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const sessionColumns = "id, draft_id, status, current_pick_number, time_per_pick_sec, auto_pick_enabled, deadline, remaining_sec, created_at, updated_at"

func (r *Repository) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO draft_sessions (id, draft_id, status, current_pick_number, time_per_pick_sec, auto_pick_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, now(), now())
		RETURNING `+sessionColumns,
		req.ID, req.DraftID, models.SessionStatusPending, req.TimePerPickSec, req.AutoPickEnabled)

	sess, err := scanSession(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, apperrors.Duplicate("a session already exists for draft %s", req.DraftID)
		}
		return nil, apperrors.Internal("failed to create session", err)
	}
	return sess, nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM draft_sessions WHERE id = $1`, id)
	return r.scanOne(row, id.String())
}

func (r *Repository) GetSessionByDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM draft_sessions WHERE draft_id = $1`, draftID)
	return r.scanOne(row, draftID.String())
}

func (r *Repository) ArmClock(ctx context.Context, id uuid.UUID, pickNumber int, deadline time.Time) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, current_pick_number = $3, deadline = $4, remaining_sec = NULL, updated_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'RUNNING')
		RETURNING `+sessionColumns,
		id, models.SessionStatusRunning, pickNumber, deadline)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("session %s is not armable", id)
		}
		return nil, apperrors.Internal("failed to arm session clock", err)
	}
	return sess, nil
}

func (r *Repository) PauseClock(ctx context.Context, id uuid.UUID, remainingSec float64) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, deadline = NULL, remaining_sec = $3, updated_at = now()
		WHERE id = $1 AND status = 'RUNNING'
		RETURNING `+sessionColumns,
		id, models.SessionStatusPaused, remainingSec)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("session %s is not running", id)
		}
		return nil, apperrors.Internal("failed to pause session clock", err)
	}
	return sess, nil
}

func (r *Repository) ResumeClock(ctx context.Context, id uuid.UUID, deadline time.Time) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, deadline = $3, remaining_sec = NULL, updated_at = now()
		WHERE id = $1 AND status = 'PAUSED'
		RETURNING `+sessionColumns,
		id, models.SessionStatusRunning, deadline)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("session %s is not paused", id)
		}
		return nil, apperrors.Internal("failed to resume session clock", err)
	}
	return sess, nil
}

func (r *Repository) FinishSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_sessions
		SET status = $2, deadline = NULL, remaining_sec = NULL, updated_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'RUNNING', 'PAUSED')
		RETURNING `+sessionColumns,
		id, models.SessionStatusFinished)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("session %s is already finished or missing", id)
		}
		return nil, apperrors.Internal("failed to finish session", err)
	}
	return sess, nil
}

func (r *Repository) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, draft_id, deadline FROM draft_sessions
		WHERE status = 'RUNNING' AND deadline IS NOT NULL
		ORDER BY deadline
		LIMIT 1`)

	var nd NextDeadline
	var deadline sql.NullTime
	if err := row.Scan(&nd.SessionID, &nd.DraftID, &deadline); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Internal("failed to fetch next deadline", err)
	}
	if deadline.Valid {
		nd.Deadline = &deadline.Time
	}
	return &nd, nil
}

func (r *Repository) FetchSessionsDueForPick(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM draft_sessions
		WHERE status = 'RUNNING' AND deadline IS NOT NULL AND deadline <= $1
		ORDER BY deadline
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch due sessions", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Internal("failed to scan due session", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate due sessions", err)
	}
	return ids, nil
}

func (r *Repository) scanOne(row *sql.Row, key string) (*models.DraftSession, error) {
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("session %s not found", key)
		}
		return nil, apperrors.Internal("failed to get session", err)
	}
	return sess, nil
}

func scanSession(row *sql.Row) (*models.DraftSession, error) {
	var (
		sess         models.DraftSession
		deadline     sql.NullTime
		remainingSec sql.NullFloat64
	)
	err := row.Scan(&sess.ID, &sess.DraftID, &sess.Status, &sess.CurrentPickNumber,
		&sess.TimePerPickSec, &sess.AutoPickEnabled, &deadline, &remainingSec,
		&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		sess.Deadline = &deadline.Time
	}
	if remainingSec.Valid {
		sess.RemainingSec = &remainingSec.Float64
	}
	return &sess, nil
}
