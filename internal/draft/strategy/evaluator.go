// Package strategy scores remaining draft-eligible players for a team and
// picks the single best candidate for automated selection.
package strategy

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// StrategySource resolves a team's configured drafting strategy. NotFound
// means the team never configured one and the evaluator falls back to pure
// best-player-available.
type StrategySource interface {
	GetStrategy(ctx context.Context, draftID, teamID uuid.UUID) (*models.DraftStrategy, error)
}

// NeedSource resolves a team's positional needs.
type NeedSource interface {
	GetTeamNeeds(ctx context.Context, teamID uuid.UUID) ([]models.TeamNeed, error)
}

// Evaluator ranks candidates by blending consensus evaluation against team
// need. Scoring is a pure function of the strategy, the needs, and the
// candidate list, so identical inputs always pick the same player.
type Evaluator struct {
	strategies StrategySource
	needs      NeedSource
}

func NewEvaluator(strategies StrategySource, needs NeedSource) *Evaluator {
	return &Evaluator{
		strategies: strategies,
		needs:      needs,
	}
}

// defaultStrategy is the implicit best-available-only strategy used for teams
// with nothing configured.
func defaultStrategy(draftID, teamID uuid.UUID) models.DraftStrategy {
	return models.DraftStrategy{
		TeamID:        teamID,
		DraftID:       draftID,
		BPAWeight:     100,
		NeedWeight:    0,
		RiskTolerance: 10,
	}
}

// SelectPlayer returns the best candidate for the team under its strategy.
// Candidates whose risk severity exceeds the team's tolerance are excluded,
// unless that empties the pool entirely — a team on the clock still has to
// pick someone.
func (e *Evaluator) SelectPlayer(ctx context.Context, draftID, teamID uuid.UUID, candidates []models.Player) (*models.Player, error) {
	if len(candidates) == 0 {
		return nil, apperrors.NotFound("no draft-eligible players remain")
	}

	strat, err := e.strategies.GetStrategy(ctx, draftID, teamID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		fallback := defaultStrategy(draftID, teamID)
		strat = &fallback
		log.Debug().
			Str("team_id", teamID.String()).
			Msg("no strategy configured, scoring best player available")
	}

	needs, err := e.needs.GetTeamNeeds(ctx, teamID)
	if err != nil {
		return nil, err
	}
	priorityByPosition := make(map[models.Position]int, len(needs))
	for _, n := range needs {
		priorityByPosition[n.Position] = n.Priority
	}

	pool := make([]models.Player, 0, len(candidates))
	for _, p := range candidates {
		if p.RiskSeverity <= strat.RiskTolerance {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}

	type scored struct {
		player models.Player
		score  float64
	}
	ranked := make([]scored, len(pool))
	for i, p := range pool {
		ranked[i] = scored{player: p, score: Score(*strat, priorityByPosition, p)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.player.ConsensusRank != b.player.ConsensusRank {
			return a.player.ConsensusRank < b.player.ConsensusRank
		}
		if !a.player.CreatedAt.Equal(b.player.CreatedAt) {
			return a.player.CreatedAt.Before(b.player.CreatedAt)
		}
		return a.player.ID.String() < b.player.ID.String()
	})

	best := ranked[0].player
	log.Debug().
		Str("team_id", teamID.String()).
		Str("player_id", best.ID.String()).
		Float64("score", ranked[0].score).
		Msg("evaluator selected player")
	return &best, nil
}

// Score computes a single candidate's blended score under a strategy. The
// BPA component is the player's scouting grade; the need component maps the
// team's priority for the player's position (1 = most urgent) onto a 0-100
// scale. Both are weighted and the sum is scaled by the team's positional
// multiplier, defaulting to 1.
func Score(strat models.DraftStrategy, priorityByPosition map[models.Position]int, p models.Player) float64 {
	bpaComponent := p.ScoutingGrade

	var needComponent float64
	if priority, ok := priorityByPosition[p.Position]; ok && priority >= 1 && priority <= 10 {
		needComponent = float64(11-priority) * 10
	}

	score := bpaComponent*(float64(strat.BPAWeight)/100) + needComponent*(float64(strat.NeedWeight)/100)

	if multiplier, ok := strat.PositionValues[p.Position]; ok {
		score *= multiplier
	}
	return score
}
