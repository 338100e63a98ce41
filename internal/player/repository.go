package player

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Repository persists players in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const playerColumns = "id, full_name, position, eligible_year, consensus_rank, scouting_grade, risk_flags, risk_severity, created_at"

func (r *Repository) CreatePlayer(ctx context.Context, p models.Player) error {
	flags := make([]string, len(p.RiskFlags))
	for i, f := range p.RiskFlags {
		flags[i] = string(f)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, full_name, position, eligible_year, consensus_rank, scouting_grade, risk_flags, risk_severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.FullName, p.Position, p.EligibleYear, p.ConsensusRank,
		p.ScoutingGrade, pq.Array(flags), p.RiskSeverity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return apperrors.Duplicate("player %s already exists", p.ID)
		}
		return apperrors.Internal("failed to insert player", err)
	}
	return nil
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+playerColumns+" FROM players WHERE id = $1", id)
	p, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("player %s not found", id)
		}
		return nil, apperrors.Internal("failed to get player", err)
	}
	return p, nil
}

func (r *Repository) ListPlayersByYear(ctx context.Context, eligibleYear int) ([]models.Player, error) {
	return r.queryPlayers(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE eligible_year = $1
		ORDER BY consensus_rank, created_at, id`, eligibleYear)
}

// ListAvailablePlayersForDraft returns eligible players not yet assigned to
// any made pick in the draft, best consensus rank first.
func (r *Repository) ListAvailablePlayersForDraft(ctx context.Context, draftID uuid.UUID, eligibleYear int) ([]models.Player, error) {
	return r.queryPlayers(ctx, `
		SELECT `+playerColumns+`
		FROM players p
		WHERE p.eligible_year = $2
		  AND NOT EXISTS (
			SELECT 1 FROM draft_picks dp
			WHERE dp.draft_id = $1 AND dp.player_id = p.id
		  )
		ORDER BY p.consensus_rank, p.created_at, p.id`, draftID, eligibleYear)
}

func (r *Repository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM players WHERE id = $1", id)
	if err != nil {
		return apperrors.Internal("failed to delete player", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("player %s not found", id)
	}
	return nil
}

func (r *Repository) queryPlayers(ctx context.Context, query string, args ...any) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("failed to query players", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, apperrors.Internal("failed to scan player", err)
		}
		players = append(players, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to iterate players", err)
	}
	return players, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(s scanner) (*models.Player, error) {
	var (
		p     models.Player
		flags pq.StringArray
	)
	err := s.Scan(
		&p.ID,
		&p.FullName,
		&p.Position,
		&p.EligibleYear,
		&p.ConsensusRank,
		&p.ScoutingGrade,
		&flags,
		&p.RiskSeverity,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		p.RiskFlags = make([]models.RiskFlag, len(flags))
		for i, f := range flags {
			p.RiskFlags[i] = models.RiskFlag(f)
		}
	}
	return &p, nil
}
