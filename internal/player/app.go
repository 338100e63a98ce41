// Package player manages the draft-eligible player pool.
package player

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// PlayerRepository defines what the player app layer needs from the player
// repository.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, p models.Player) error
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayersByYear(ctx context.Context, eligibleYear int) ([]models.Player, error)
	ListAvailablePlayersForDraft(ctx context.Context, draftID uuid.UUID, eligibleYear int) ([]models.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

// App handles player pool business logic.
type App struct {
	repo PlayerRepository
}

func NewApp(repo PlayerRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreatePlayer validates and stores a new draft-eligible player.
func (a *App) CreatePlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	if err := validatePlayer(p); err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := a.repo.CreatePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	log.Info().
		Str("player_id", p.ID.String()).
		Str("name", p.FullName).
		Str("position", string(p.Position)).
		Msg("player created")
	return &p, nil
}

// GetPlayer retrieves a player by ID.
func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	if id == uuid.Nil {
		return nil, apperrors.Validation("player ID is required")
	}
	return a.repo.GetPlayer(ctx, id)
}

// ListPlayersByYear returns every player eligible for the given draft year.
func (a *App) ListPlayersByYear(ctx context.Context, eligibleYear int) ([]models.Player, error) {
	return a.repo.ListPlayersByYear(ctx, eligibleYear)
}

// ListAvailablePlayersForDraft returns players eligible for the draft's year
// and not yet selected in it, ordered by consensus rank.
func (a *App) ListAvailablePlayersForDraft(ctx context.Context, draftID uuid.UUID, eligibleYear int) ([]models.Player, error) {
	if draftID == uuid.Nil {
		return nil, apperrors.Validation("draft ID is required")
	}
	return a.repo.ListAvailablePlayersForDraft(ctx, draftID, eligibleYear)
}

// DeletePlayer removes a player from the pool.
func (a *App) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.Validation("player ID is required")
	}
	return a.repo.DeletePlayer(ctx, id)
}

func validatePlayer(p models.Player) error {
	if p.FullName == "" {
		return apperrors.Validation("full_name is required")
	}
	if p.Position == "" {
		return apperrors.Validation("position is required")
	}
	if p.EligibleYear < 1936 {
		return apperrors.Validation("eligible_year %d is not a valid draft year", p.EligibleYear)
	}
	if p.ConsensusRank < 1 {
		return apperrors.Validation("consensus_rank must be >= 1, got %d", p.ConsensusRank)
	}
	if p.ScoutingGrade < 0 || p.ScoutingGrade > 100 {
		return apperrors.Validation("scouting_grade must be 0-100, got %v", p.ScoutingGrade)
	}
	if p.RiskSeverity < 0 || p.RiskSeverity > 10 {
		return apperrors.Validation("risk_severity must be 0-10, got %d", p.RiskSeverity)
	}
	if len(p.RiskFlags) > 0 && p.RiskSeverity == 0 {
		return apperrors.Validation("flagged players need a risk_severity")
	}
	return nil
}
