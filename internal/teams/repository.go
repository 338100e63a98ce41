package teams

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
	"github.com/gridironlabs/draftsim/internal/sqlutil"
)

// Repository persists teams and team needs in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateTeam(ctx context.Context, team models.Team) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, code)
		VALUES ($1, $2, $3)`,
		team.ID, team.Name, team.Code)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperrors.Duplicate("team with code %s already exists", team.Code)
		}
		return apperrors.Internal("failed to insert team", err)
	}
	return nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, code, created_at
		FROM teams
		WHERE id = $1`, id).Scan(&team.ID, &team.Name, &team.Code, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("team %s not found", id)
		}
		return nil, apperrors.Internal("failed to get team", err)
	}
	return &team, nil
}

func (r *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, code, created_at
		FROM teams
		ORDER BY name`)
	if err != nil {
		return nil, apperrors.Internal("failed to query teams", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Code, &team.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan team", err)
		}
		out = append(out, team)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate teams", err)
	}
	return out, nil
}

func (r *Repository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM teams WHERE id = $1", id)
	if err != nil {
		return apperrors.Internal("failed to delete team", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("team %s not found", id)
	}
	return nil
}

// ReplaceTeamNeeds swaps the team's need rows wholesale in one transaction.
func (r *Repository) ReplaceTeamNeeds(ctx context.Context, teamID uuid.UUID, needs []models.TeamNeed) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM team_needs WHERE team_id = $1", teamID); err != nil {
			return apperrors.Internal("failed to clear team needs", err)
		}
		for _, n := range needs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO team_needs (team_id, position, priority)
				VALUES ($1, $2, $3)`,
				teamID, n.Position, n.Priority); err != nil {
				return apperrors.Internal("failed to insert team need", err)
			}
		}
		return nil
	})
}

// UpsertStanding records or updates a team's record for a season.
func (r *Repository) UpsertStanding(ctx context.Context, standing models.TeamStanding) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_standings (team_id, season_year, wins, losses, ties)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id, season_year) DO UPDATE
		SET wins = EXCLUDED.wins, losses = EXCLUDED.losses, ties = EXCLUDED.ties`,
		standing.TeamID, standing.SeasonYear, standing.Wins, standing.Losses, standing.Ties)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return apperrors.NotFound("team %s not found", standing.TeamID)
		}
		return apperrors.Internal("failed to upsert team standing", err)
	}
	return nil
}

// TeamsByReverseStandings returns team IDs for the season worst record first.
// Win percentage counts a tie as half a win; losses then team ID break ties so
// the ordering is stable.
func (r *Repository) TeamsByReverseStandings(ctx context.Context, year int) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id
		FROM team_standings
		WHERE season_year = $1
		ORDER BY (wins + 0.5 * ties)::float / GREATEST(wins + losses + ties, 1),
			losses DESC, team_id`, year)
	if err != nil {
		return nil, apperrors.Internal("failed to query standings", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Internal("failed to scan standing", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate standings", err)
	}
	return out, nil
}

func (r *Repository) GetTeamNeeds(ctx context.Context, teamID uuid.UUID) ([]models.TeamNeed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, position, priority
		FROM team_needs
		WHERE team_id = $1
		ORDER BY priority, position`, teamID)
	if err != nil {
		return nil, apperrors.Internal("failed to query team needs", err)
	}
	defer rows.Close()

	var out []models.TeamNeed
	for rows.Next() {
		var n models.TeamNeed
		if err := rows.Scan(&n.TeamID, &n.Position, &n.Priority); err != nil {
			return nil, apperrors.Internal("failed to scan team need", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate team needs", err)
	}
	return out, nil
}
