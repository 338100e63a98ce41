package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/models"
)

// AutoPickStrategy chooses the player an expired session drafts automatically
// for the slot on the clock. The orchestrator resolves the slot; strategies
// only pick the player.
type AutoPickStrategy interface {
	SelectPlayer(ctx context.Context, sess models.DraftSession, slot models.DraftPick) (uuid.UUID, error)
}

// PlayerPool lists the undrafted players a strategy chooses from.
type PlayerPool interface {
	ListAvailablePlayersForDraft(ctx context.Context, draftID uuid.UUID, eligibleYear int) ([]models.Player, error)
}

// DraftYearSource resolves a draft's year for eligibility filtering.
type DraftYearSource interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

// PlayerSelector ranks candidates for the team on the clock.
type PlayerSelector interface {
	SelectPlayer(ctx context.Context, draftID, teamID uuid.UUID, candidates []models.Player) (*models.Player, error)
}

// EvaluatorStrategy picks via the strategy evaluator: the team's configured
// BPA/need blend decides, falling back to best player available for teams
// with no strategy.
type EvaluatorStrategy struct {
	players   PlayerPool
	drafts    DraftYearSource
	evaluator PlayerSelector
}

func NewEvaluatorStrategy(players PlayerPool, drafts DraftYearSource, evaluator PlayerSelector) *EvaluatorStrategy {
	return &EvaluatorStrategy{
		players:   players,
		drafts:    drafts,
		evaluator: evaluator,
	}
}

// SelectPlayer implements AutoPickStrategy.
func (s *EvaluatorStrategy) SelectPlayer(ctx context.Context, sess models.DraftSession, slot models.DraftPick) (uuid.UUID, error) {
	draft, err := s.drafts.GetDraft(ctx, sess.DraftID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get draft: %w", err)
	}
	candidates, err := s.players.ListAvailablePlayersForDraft(ctx, sess.DraftID, draft.Year)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list players: %w", err)
	}

	choice, err := s.evaluator.SelectPlayer(ctx, sess.DraftID, slot.TeamID, candidates)
	if err != nil {
		return uuid.Nil, fmt.Errorf("evaluate players: %w", err)
	}

	log.Info().
		Str("draft_id", sess.DraftID.String()).
		Str("team_id", slot.TeamID.String()).
		Str("player_id", choice.ID.String()).
		Int("overall_pick", slot.OverallPick).
		Msg("auto-pick selected player")
	return choice.ID, nil
}

// RandomStrategy picks any eligible player at random. Useful for load tests
// and drafts where no team configures a strategy.
type RandomStrategy struct {
	players PlayerPool
	drafts  DraftYearSource
	rng     *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy(players PlayerPool, drafts DraftYearSource) *RandomStrategy {
	return &RandomStrategy{
		players: players,
		drafts:  drafts,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectPlayer implements AutoPickStrategy.
func (s *RandomStrategy) SelectPlayer(ctx context.Context, sess models.DraftSession, slot models.DraftPick) (uuid.UUID, error) {
	draft, err := s.drafts.GetDraft(ctx, sess.DraftID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get draft: %w", err)
	}
	candidates, err := s.players.ListAvailablePlayersForDraft(ctx, sess.DraftID, draft.Year)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list players: %w", err)
	}
	if len(candidates) == 0 {
		return uuid.Nil, fmt.Errorf("no available players")
	}

	choice := candidates[s.rng.Intn(len(candidates))]
	log.Info().
		Str("draft_id", sess.DraftID.String()).
		Str("player_id", choice.ID.String()).
		Int("overall_pick", slot.OverallPick).
		Msg("auto-pick chose random player")
	return choice.ID, nil
}
