// Package teams manages franchises and their positional needs.
package teams

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// TeamRepository defines what the teams app layer needs from the team
// repository.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team models.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	ReplaceTeamNeeds(ctx context.Context, teamID uuid.UUID, needs []models.TeamNeed) error
	GetTeamNeeds(ctx context.Context, teamID uuid.UUID) ([]models.TeamNeed, error)
	UpsertStanding(ctx context.Context, standing models.TeamStanding) error
	TeamsByReverseStandings(ctx context.Context, year int) ([]uuid.UUID, error)
}

// App handles team business logic.
type App struct {
	repo TeamRepository
}

func NewApp(repo TeamRepository) *App {
	return &App{
		repo: repo,
	}
}

// CreateTeam validates and stores a new team.
func (a *App) CreateTeam(ctx context.Context, team models.Team) (*models.Team, error) {
	if team.Name == "" {
		return nil, apperrors.Validation("team name is required")
	}
	if team.Code == "" {
		return nil, apperrors.Validation("team code is required")
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	if err := a.repo.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	log.Info().Str("team_id", team.ID.String()).Str("code", team.Code).Msg("team created")
	return &team, nil
}

// GetTeam retrieves a team by ID.
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	if id == uuid.Nil {
		return nil, apperrors.Validation("team ID is required")
	}
	return a.repo.GetTeam(ctx, id)
}

// ListTeams returns all teams.
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	return a.repo.ListTeams(ctx)
}

// DeleteTeam removes a team.
func (a *App) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return apperrors.Validation("team ID is required")
	}
	return a.repo.DeleteTeam(ctx, id)
}

// SetTeamNeeds replaces the team's positional needs wholesale. Each position
// may appear once; priorities run 1-10 with 1 the most urgent.
func (a *App) SetTeamNeeds(ctx context.Context, teamID uuid.UUID, needs []models.TeamNeed) error {
	if teamID == uuid.Nil {
		return apperrors.Validation("team ID is required")
	}
	seen := make(map[models.Position]bool, len(needs))
	for _, n := range needs {
		if n.Position == "" {
			return apperrors.Validation("need position is required")
		}
		if n.Priority < 1 || n.Priority > 10 {
			return apperrors.Validation("need priority must be 1-10, got %d", n.Priority)
		}
		if seen[n.Position] {
			return apperrors.Validation("position %s listed twice", n.Position)
		}
		seen[n.Position] = true
	}
	if err := a.repo.ReplaceTeamNeeds(ctx, teamID, needs); err != nil {
		return fmt.Errorf("failed to set team needs: %w", err)
	}

	log.Info().Str("team_id", teamID.String()).Int("needs", len(needs)).Msg("team needs updated")
	return nil
}

// GetTeamNeeds returns the team's positional needs.
func (a *App) GetTeamNeeds(ctx context.Context, teamID uuid.UUID) ([]models.TeamNeed, error) {
	return a.repo.GetTeamNeeds(ctx, teamID)
}

// RecordStanding stores a team's season record.
func (a *App) RecordStanding(ctx context.Context, standing models.TeamStanding) error {
	if standing.TeamID == uuid.Nil {
		return apperrors.Validation("team ID is required")
	}
	if standing.SeasonYear < 1936 {
		return apperrors.Validation("season year %d is before the first draft", standing.SeasonYear)
	}
	if standing.Wins < 0 || standing.Losses < 0 || standing.Ties < 0 {
		return apperrors.Validation("record counts cannot be negative")
	}
	if err := a.repo.UpsertStanding(ctx, standing); err != nil {
		return fmt.Errorf("failed to record standing: %w", err)
	}

	log.Info().
		Str("team_id", standing.TeamID.String()).
		Int("season_year", standing.SeasonYear).
		Int("wins", standing.Wins).
		Int("losses", standing.Losses).
		Msg("team standing recorded")
	return nil
}

// TeamsByReverseStandings returns team IDs worst record first for the season,
// the conventional draft-order rule.
func (a *App) TeamsByReverseStandings(ctx context.Context, year int) ([]uuid.UUID, error) {
	return a.repo.TeamsByReverseStandings(ctx, year)
}
