package pick

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/events"
	"github.com/gridironlabs/draftsim/internal/draft/order"
	"github.com/gridironlabs/draftsim/internal/models"
)

// PickRepository defines what the pick app layer needs from the pick
// repository. MakePick must be a guarded update: it assigns the player only
// while the slot is still unfilled and the player is not yet drafted in the
// same draft, so concurrent calls produce exactly one winner.
type PickRepository interface {
	CreateDraftPicksBatch(ctx context.Context, picks []models.DraftPick) error
	GetDraftPick(ctx context.Context, id uuid.UUID) (*models.DraftPick, error)
	GetDraftPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	GetDraftPicksByRound(ctx context.Context, draftID uuid.UUID, round int) ([]models.DraftPick, error)
	FindNextPick(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error)
	FindAvailablePicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	MakePick(ctx context.Context, pickID, playerID uuid.UUID, pickedAt time.Time) (*models.DraftPick, error)
	CountRemainingPicks(ctx context.Context, draftID uuid.UUID) (int, error)
}

// DraftSource resolves the draft a pick belongs to.
type DraftSource interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

// PlayerDirectory resolves draft-eligible players.
type PlayerDirectory interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// App handles pick sequencing business logic.
type App struct {
	repo     PickRepository
	drafts   DraftSource
	players  PlayerDirectory
	ordering order.Provider
	recorder events.Recorder
}

// NewApp creates a new pick App.
func NewApp(repo PickRepository, drafts DraftSource, players PlayerDirectory, ordering order.Provider, recorder events.Recorder) *App {
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	return &App{
		repo:     repo,
		drafts:   drafts,
		players:  players,
		ordering: ordering,
		recorder: recorder,
	}
}

// InitializeDraftPicks creates every pick slot for a draft, exactly once.
// overall_pick runs 1..total_picks; team assignment follows the order
// provider, applied per the draft's order policy.
func (a *App) InitializeDraftPicks(ctx context.Context, draftID uuid.UUID) error {
	draft, err := a.drafts.GetDraft(ctx, draftID)
	if err != nil {
		return fmt.Errorf("draft not found: %w", err)
	}

	existing, err := a.repo.GetDraftPicksByDraft(ctx, draftID)
	if err != nil {
		return fmt.Errorf("failed to check existing picks: %w", err)
	}
	if len(existing) > 0 {
		return apperrors.InvalidState("draft picks already exist for draft %s (%d picks found)", draftID, len(existing))
	}

	draftOrder, err := a.ordering.DraftOrder(ctx, draftID, draft.Settings.PicksPerRound)
	if err != nil {
		return fmt.Errorf("failed to resolve draft order: %w", err)
	}

	picks := generatePicks(draft, draftOrder)
	if err := a.repo.CreateDraftPicksBatch(ctx, picks); err != nil {
		return fmt.Errorf("failed to create draft picks: %w", err)
	}

	log.Info().
		Str("draft_id", draftID.String()).
		Int("picks", len(picks)).
		Str("order_policy", string(effectivePolicy(draft.Settings))).
		Msg("initialized draft picks")
	return nil
}

// GetDraftPick retrieves a draft pick by ID.
func (a *App) GetDraftPick(ctx context.Context, id uuid.UUID) (*models.DraftPick, error) {
	p, err := a.repo.GetDraftPick(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft pick: %w", err)
	}
	return p, nil
}

// GetDraftPicksByDraft retrieves all draft picks for a draft.
func (a *App) GetDraftPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	picks, err := a.repo.GetDraftPicksByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft picks by draft: %w", err)
	}
	return picks, nil
}

// GetDraftPicksByRound retrieves draft picks for a specific round.
func (a *App) GetDraftPicksByRound(ctx context.Context, draftID uuid.UUID, round int) ([]models.DraftPick, error) {
	if round <= 0 {
		return nil, apperrors.Validation("round must be greater than 0")
	}
	picks, err := a.repo.GetDraftPicksByRound(ctx, draftID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft picks by round: %w", err)
	}
	return picks, nil
}

// FindNextPick returns the available pick with the smallest overall number,
// or nil when every pick has been made.
func (a *App) FindNextPick(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error) {
	p, err := a.repo.FindNextPick(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to find next pick: %w", err)
	}
	return p, nil
}

// FindAvailablePicks returns all unmade picks ordered by overall_pick.
func (a *App) FindAvailablePicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	picks, err := a.repo.FindAvailablePicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to find available picks: %w", err)
	}
	return picks, nil
}

// CountRemainingPicks returns the number of unfilled slots in a draft.
func (a *App) CountRemainingPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	count, err := a.repo.CountRemainingPicks(ctx, draftID)
	if err != nil {
		return 0, fmt.Errorf("failed to count remaining picks: %w", err)
	}
	return count, nil
}

// MakePick assigns a player to an available pick. The player must exist, be
// eligible for the draft's year, and not be drafted elsewhere in the same
// draft.
func (a *App) MakePick(ctx context.Context, req MakePickRequest) (*models.DraftPick, error) {
	if req.PickID == uuid.Nil {
		return nil, apperrors.Validation("pick_id is required")
	}
	if req.PlayerID == uuid.Nil {
		return nil, apperrors.Validation("player_id is required")
	}

	p, err := a.repo.GetDraftPick(ctx, req.PickID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft pick: %w", err)
	}
	if !p.Available() {
		return nil, apperrors.InvalidState("pick %d is already made", p.OverallPick)
	}

	player, err := a.players.GetPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	draft, err := a.drafts.GetDraft(ctx, p.DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if player.EligibleYear != draft.Year {
		return nil, apperrors.InvalidState("player %s is not eligible for the %d draft", player.ID, draft.Year)
	}

	made, err := a.repo.MakePick(ctx, req.PickID, req.PlayerID, time.Now())
	if err != nil {
		return nil, err
	}

	eventType := models.EventPickMade
	if req.Auto {
		eventType = models.EventAutoPickMade
	}
	payload := events.PickMadePayload{
		PickID:      made.ID.String(),
		TeamID:      made.TeamID.String(),
		PlayerID:    req.PlayerID.String(),
		Round:       made.Round,
		Pick:        made.Pick,
		OverallPick: made.OverallPick,
		Auto:        req.Auto,
		MadeAt:      *made.PickedAt,
	}
	if err := a.recorder.Record(ctx, made.DraftID, eventType, payload); err != nil {
		log.Error().Err(err).Str("pick_id", made.ID.String()).Msg("failed to record pick event")
	}

	log.Info().
		Str("draft_id", made.DraftID.String()).
		Str("team_id", made.TeamID.String()).
		Str("player_id", req.PlayerID.String()).
		Int("overall_pick", made.OverallPick).
		Bool("auto", req.Auto).
		Msg("pick made")
	return made, nil
}

// generatePicks lays out every slot for a draft. Straight order repeats the
// first-round order each round; snake reverses even rounds, and the
// third-round-reversal variant reverses every round from three on.
func generatePicks(draft *models.Draft, draftOrder []uuid.UUID) []models.DraftPick {
	numTeams := len(draftOrder)
	policy := effectivePolicy(draft.Settings)
	picks := make([]models.DraftPick, 0, draft.Settings.Rounds*numTeams)

	overallPick := 1
	for round := 1; round <= draft.Settings.Rounds; round++ {
		roundOrder := draftOrder
		if policy == models.OrderPolicySnake {
			isReversed := round%2 == 0
			if draft.Settings.ThirdRoundReversal && round >= 3 {
				isReversed = true
			}
			if isReversed {
				roundOrder = make([]uuid.UUID, numTeams)
				for i, teamID := range draftOrder {
					roundOrder[numTeams-1-i] = teamID
				}
			}
		}

		for slot, teamID := range roundOrder {
			picks = append(picks, models.DraftPick{
				ID:          uuid.New(),
				DraftID:     draft.ID,
				Round:       round,
				Pick:        slot + 1,
				OverallPick: overallPick,
				TeamID:      teamID,
			})
			overallPick++
		}
	}
	return picks
}

func effectivePolicy(settings models.DraftSettings) models.OrderPolicy {
	if settings.OrderPolicy == "" {
		return models.OrderPolicyStraight
	}
	return settings.OrderPolicy
}
