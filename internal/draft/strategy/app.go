package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// StrategyRepository defines what the strategy app layer needs from the
// strategy repository.
type StrategyRepository interface {
	UpsertStrategy(ctx context.Context, strat models.DraftStrategy) error
	GetStrategy(ctx context.Context, draftID, teamID uuid.UUID) (*models.DraftStrategy, error)
	DeleteStrategy(ctx context.Context, draftID, teamID uuid.UUID) error
}

// App handles strategy configuration business logic.
type App struct {
	repo StrategyRepository
}

func NewApp(repo StrategyRepository) *App {
	return &App{
		repo: repo,
	}
}

// ConfigureStrategy validates and stores a team's drafting strategy for a
// draft, replacing any previous configuration.
func (a *App) ConfigureStrategy(ctx context.Context, strat models.DraftStrategy) error {
	if err := validateStrategy(strat); err != nil {
		return err
	}
	if err := a.repo.UpsertStrategy(ctx, strat); err != nil {
		return fmt.Errorf("failed to store strategy: %w", err)
	}

	log.Info().
		Str("draft_id", strat.DraftID.String()).
		Str("team_id", strat.TeamID.String()).
		Int("bpa_weight", strat.BPAWeight).
		Int("need_weight", strat.NeedWeight).
		Msg("draft strategy configured")
	return nil
}

// GetStrategy returns the team's configured strategy, NotFound if none.
func (a *App) GetStrategy(ctx context.Context, draftID, teamID uuid.UUID) (*models.DraftStrategy, error) {
	return a.repo.GetStrategy(ctx, draftID, teamID)
}

// ClearStrategy removes a team's strategy, returning the team to implicit
// best-player-available automation.
func (a *App) ClearStrategy(ctx context.Context, draftID, teamID uuid.UUID) error {
	return a.repo.DeleteStrategy(ctx, draftID, teamID)
}

func validateStrategy(strat models.DraftStrategy) error {
	if strat.DraftID == uuid.Nil {
		return apperrors.Validation("draft_id is required")
	}
	if strat.TeamID == uuid.Nil {
		return apperrors.Validation("team_id is required")
	}
	if strat.BPAWeight < 0 || strat.BPAWeight > 100 {
		return apperrors.Validation("bpa_weight must be 0-100, got %d", strat.BPAWeight)
	}
	if strat.NeedWeight < 0 || strat.NeedWeight > 100 {
		return apperrors.Validation("need_weight must be 0-100, got %d", strat.NeedWeight)
	}
	if strat.BPAWeight+strat.NeedWeight != 100 {
		return apperrors.Validation("bpa_weight and need_weight must sum to 100, got %d", strat.BPAWeight+strat.NeedWeight)
	}
	if strat.RiskTolerance < 1 || strat.RiskTolerance > 10 {
		return apperrors.Validation("risk_tolerance must be 1-10, got %d", strat.RiskTolerance)
	}
	for pos, mult := range strat.PositionValues {
		if mult <= 0 {
			return apperrors.Validation("position value for %s must be positive, got %v", pos, mult)
		}
	}
	return nil
}
