// Package order supplies the team-to-slot mapping used when a draft's pick
// slots are initialized.
package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Provider yields the first-round team ordering for a draft. The sequencer
// applies it to every round according to the draft's order policy.
type Provider interface {
	DraftOrder(ctx context.Context, draftID uuid.UUID, slots int) ([]uuid.UUID, error)
}

// StaticProvider returns a fixed ordering, typically configured up front for
// simulated drafts.
type StaticProvider struct {
	order []uuid.UUID
}

func NewStaticProvider(order []uuid.UUID) *StaticProvider {
	return &StaticProvider{order: order}
}

func (p *StaticProvider) DraftOrder(_ context.Context, draftID uuid.UUID, slots int) ([]uuid.UUID, error) {
	if len(p.order) != slots {
		return nil, apperrors.Validation("draft %s needs %d order slots, provider has %d", draftID, slots, len(p.order))
	}
	out := make([]uuid.UUID, slots)
	copy(out, p.order)
	return out, nil
}

// StandingsSource yields team IDs ranked worst record first, the usual rule
// for assigning draft position.
type StandingsSource interface {
	TeamsByReverseStandings(ctx context.Context, year int) ([]uuid.UUID, error)
}

// StandingsProvider derives the order from league standings for the draft's
// year.
type StandingsProvider struct {
	source StandingsSource
	year   int
}

func NewStandingsProvider(source StandingsSource, year int) *StandingsProvider {
	return &StandingsProvider{source: source, year: year}
}

func (p *StandingsProvider) DraftOrder(ctx context.Context, draftID uuid.UUID, slots int) ([]uuid.UUID, error) {
	teams, err := p.source.TeamsByReverseStandings(ctx, p.year)
	if err != nil {
		return nil, err
	}
	if len(teams) < slots {
		return nil, apperrors.Validation("draft %s needs %d order slots, standings yield %d", draftID, slots, len(teams))
	}
	return teams[:slots], nil
}

// DraftYearSource resolves the draft whose order is being built.
type DraftYearSource interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

// SeasonProvider orders each draft from the standings of the season before
// its year, so one provider serves drafts across years.
type SeasonProvider struct {
	source StandingsSource
	drafts DraftYearSource
}

func NewSeasonProvider(source StandingsSource, drafts DraftYearSource) *SeasonProvider {
	return &SeasonProvider{source: source, drafts: drafts}
}

func (p *SeasonProvider) DraftOrder(ctx context.Context, draftID uuid.UUID, slots int) ([]uuid.UUID, error) {
	d, err := p.drafts.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return NewStandingsProvider(p.source, d.Year-1).DraftOrder(ctx, draftID, slots)
}
