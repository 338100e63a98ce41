package pick

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

// Repository persists draft picks in Postgres. The draft_picks table carries
// a unique (draft_id, overall_pick) constraint and a partial unique
// (draft_id, player_id) constraint for made picks.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const pickColumns = "id, draft_id, round, pick, overall_pick, team_id, player_id, picked_at"

func (r *Repository) CreateDraftPicksBatch(ctx context.Context, picks []models.DraftPick) error {
	if len(picks) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(picks))
	draftIDs := make([]uuid.UUID, len(picks))
	rounds := make([]int32, len(picks))
	pickNumbers := make([]int32, len(picks))
	overallPicks := make([]int32, len(picks))
	teamIDs := make([]uuid.UUID, len(picks))
	for i, p := range picks {
		ids[i] = p.ID
		draftIDs[i] = p.DraftID
		rounds[i] = int32(p.Round)
		pickNumbers[i] = int32(p.Pick)
		overallPicks[i] = int32(p.OverallPick)
		teamIDs[i] = p.TeamID
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_picks (id, draft_id, round, pick, overall_pick, team_id)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::int[], $4::int[], $5::int[], $6::uuid[])`,
		pq.Array(ids), pq.Array(draftIDs), pq.Array(rounds), pq.Array(pickNumbers),
		pq.Array(overallPicks), pq.Array(teamIDs))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperrors.Duplicate("draft picks already exist")
		}
		return apperrors.Internal("failed to batch create draft picks", err)
	}
	return nil
}

func (r *Repository) GetDraftPick(ctx context.Context, id uuid.UUID) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+pickColumns+` FROM draft_picks WHERE id = $1`, id)
	p, err := scanPick(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("draft pick %s not found", id)
		}
		return nil, apperrors.Internal("failed to get draft pick", err)
	}
	return p, nil
}

func (r *Repository) GetDraftPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	return r.queryPicks(ctx, `
		SELECT `+pickColumns+` FROM draft_picks
		WHERE draft_id = $1
		ORDER BY overall_pick`, draftID)
}

func (r *Repository) GetDraftPicksByRound(ctx context.Context, draftID uuid.UUID, round int) ([]models.DraftPick, error) {
	return r.queryPicks(ctx, `
		SELECT `+pickColumns+` FROM draft_picks
		WHERE draft_id = $1 AND round = $2
		ORDER BY overall_pick`, draftID, round)
}

func (r *Repository) FindNextPick(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+pickColumns+` FROM draft_picks
		WHERE draft_id = $1 AND player_id IS NULL
		ORDER BY overall_pick
		LIMIT 1`, draftID)
	p, err := scanPick(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // all picks made
		}
		return nil, apperrors.Internal("failed to find next pick", err)
	}
	return p, nil
}

func (r *Repository) FindAvailablePicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	return r.queryPicks(ctx, `
		SELECT `+pickColumns+` FROM draft_picks
		WHERE draft_id = $1 AND player_id IS NULL
		ORDER BY overall_pick`, draftID)
}

// MakePick assigns the player to the pick only while the slot is unfilled.
// The partial unique index on (draft_id, player_id) rejects a player picked
// twice in the same draft.
func (r *Repository) MakePick(ctx context.Context, pickID, playerID uuid.UUID, pickedAt time.Time) (*models.DraftPick, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE draft_picks
		SET player_id = $2, picked_at = $3
		WHERE id = $1 AND player_id IS NULL
		RETURNING `+pickColumns,
		pickID, playerID, pickedAt)

	p, err := scanPick(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.InvalidState("pick %s already made or not found", pickID)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, apperrors.InvalidState("player %s already drafted in this draft", playerID)
		}
		return nil, apperrors.Internal("failed to make pick", err)
	}
	return p, nil
}

func (r *Repository) CountRemainingPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM draft_picks
		WHERE draft_id = $1 AND player_id IS NULL`, draftID).Scan(&count)
	if err != nil {
		return 0, apperrors.Internal("failed to count remaining picks", err)
	}
	return count, nil
}

// UpdatePickOwner reassigns a pick's owning team inside an existing
// transaction, guarded on the expected current owner and the pick being
// unmade. Used by the trade ledger's settlement path; zero rows means the
// pick was made or re-owned since the caller last looked.
func UpdatePickOwner(ctx context.Context, tx *sql.Tx, pickID, fromTeamID, toTeamID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE draft_picks
		SET team_id = $3
		WHERE id = $1 AND team_id = $2 AND player_id IS NULL`,
		pickID, fromTeamID, toTeamID)
	if err != nil {
		return apperrors.Internal("failed to update pick owner", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.InvalidState("pick %s is no longer available", pickID)
	}
	return nil
}

func (r *Repository) queryPicks(ctx context.Context, query string, args ...any) ([]models.DraftPick, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("failed to query draft picks", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, apperrors.Internal("failed to scan draft pick", err)
		}
		picks = append(picks, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate draft picks", err)
	}
	return picks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPick(row scanner) (*models.DraftPick, error) {
	var (
		p        models.DraftPick
		playerID uuid.NullUUID
		pickedAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.DraftID, &p.Round, &p.Pick, &p.OverallPick, &p.TeamID, &playerID, &pickedAt)
	if err != nil {
		return nil, err
	}
	if playerID.Valid {
		p.PlayerID = &playerID.UUID
	}
	if pickedAt.Valid {
		p.PickedAt = &pickedAt.Time
	}
	return &p, nil
}
