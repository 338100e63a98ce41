package strategy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Repository persists draft strategies in Postgres, keyed by
// (draft_id, team_id). Position multipliers are stored as JSONB.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) UpsertStrategy(ctx context.Context, strat models.DraftStrategy) error {
	positionValues, err := json.Marshal(strat.PositionValues)
	if err != nil {
		return apperrors.Internal("failed to marshal position values", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO draft_strategies (draft_id, team_id, bpa_weight, need_weight, position_values, risk_tolerance)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (draft_id, team_id) DO UPDATE SET
			bpa_weight = EXCLUDED.bpa_weight,
			need_weight = EXCLUDED.need_weight,
			position_values = EXCLUDED.position_values,
			risk_tolerance = EXCLUDED.risk_tolerance`,
		strat.DraftID, strat.TeamID, strat.BPAWeight, strat.NeedWeight,
		positionValues, strat.RiskTolerance)
	if err != nil {
		return apperrors.Internal("failed to upsert strategy", err)
	}
	return nil
}

func (r *Repository) GetStrategy(ctx context.Context, draftID, teamID uuid.UUID) (*models.DraftStrategy, error) {
	var (
		strat          models.DraftStrategy
		positionValues []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT draft_id, team_id, bpa_weight, need_weight, position_values, risk_tolerance
		FROM draft_strategies
		WHERE draft_id = $1 AND team_id = $2`, draftID, teamID).Scan(
		&strat.DraftID,
		&strat.TeamID,
		&strat.BPAWeight,
		&strat.NeedWeight,
		&positionValues,
		&strat.RiskTolerance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("no strategy for team %s in draft %s", teamID, draftID)
		}
		return nil, apperrors.Internal("failed to get strategy", err)
	}
	if len(positionValues) > 0 {
		if err := json.Unmarshal(positionValues, &strat.PositionValues); err != nil {
			return nil, apperrors.Internal("failed to unmarshal position values", err)
		}
	}
	return &strat, nil
}

func (r *Repository) DeleteStrategy(ctx context.Context, draftID, teamID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM draft_strategies
		WHERE draft_id = $1 AND team_id = $2`, draftID, teamID)
	if err != nil {
		return apperrors.Internal("failed to delete strategy", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to get rows affected count", err)
	}
	if rows == 0 {
		return apperrors.NotFound("no strategy for team %s in draft %s", teamID, draftID)
	}
	return nil
}
