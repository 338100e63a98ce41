package main

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/draftsim/internal/draft/chart"
	draftapp "github.com/gridironlabs/draftsim/internal/draft/draft"
	"github.com/gridironlabs/draftsim/internal/draft/orchestrator"
	"github.com/gridironlabs/draftsim/internal/draft/order"
	"github.com/gridironlabs/draftsim/internal/draft/outbox"
	"github.com/gridironlabs/draftsim/internal/draft/pick"
	"github.com/gridironlabs/draftsim/internal/draft/session"
	"github.com/gridironlabs/draftsim/internal/draft/strategy"
	"github.com/gridironlabs/draftsim/internal/draft/trade"
	"github.com/gridironlabs/draftsim/internal/player"
	"github.com/gridironlabs/draftsim/internal/teams"
)

type Services struct {
	Teams      *teams.App
	Players    *player.App
	Drafts     *draftapp.App
	Picks      *pick.App
	Sessions   *session.App
	Trades     *trade.App
	Strategies *strategy.App
	Events     *outbox.App

	EventRepo    *outbox.Repository
	Orchestrator *orchestrator.Orchestrator
}

func setupServices(database *sql.DB, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer

	clock := clockwork.NewRealClock()

	// Events (outbox) first: the other apps record through it.
	eventRepo := outbox.NewRepository(database)
	eventApp := outbox.NewApp(eventRepo)

	// Teams and players
	teamsRepo := teams.NewRepository(database)
	teamsApp := teams.NewApp(teamsRepo)

	playerRepo := player.NewRepository(database)
	playerApp := player.NewApp(playerRepo)

	// Drafts
	draftRepo := draftapp.NewRepository(database)
	draftApp := draftapp.NewApp(draftRepo, eventApp)

	// Picks, ordered from the prior season's standings
	ordering := order.NewSeasonProvider(teamsApp, draftApp)
	pickRepo := pick.NewRepository(database)
	pickApp := pick.NewApp(pickRepo, draftApp, playerApp, ordering, eventApp)

	// Sessions
	sessionRepo := session.NewRepository(database)
	sessionApp := session.NewApp(sessionRepo, clock, eventApp)

	// Trades
	tradeRepo := trade.NewRepository(database)
	tradeApp := trade.NewApp(tradeRepo, pickApp, sessionApp, eventApp)
	if config.Draft.ValueChart != "" {
		if err := tradeApp.SetValueChart(chart.ChartType(config.Draft.ValueChart)); err != nil {
			return nil, fmt.Errorf("invalid value chart %q (valid: %v): %w",
				config.Draft.ValueChart, chart.Types(), err)
		}
	}

	// Strategies and the auto-pick evaluator
	strategyRepo := strategy.NewRepository(database)
	strategyApp := strategy.NewApp(strategyRepo)
	evaluator := strategy.NewEvaluator(strategyApp, teamsApp)

	var autoPick orchestrator.AutoPickStrategy
	switch config.Orchestrator.AutoPick {
	case "", "evaluator":
		autoPick = orchestrator.NewEvaluatorStrategy(playerApp, draftApp, evaluator)
	case "random":
		autoPick = orchestrator.NewRandomStrategy(playerApp, draftApp)
	default:
		return nil, fmt.Errorf("unknown auto_pick strategy %q", config.Orchestrator.AutoPick)
	}

	orch := orchestrator.NewOrchestrator(
		sessionApp, pickApp, draftApp, autoPick,
		config.Orchestrator.BatchSize, clock,
	)

	return &Services{
		Teams:        teamsApp,
		Players:      playerApp,
		Drafts:       draftApp,
		Picks:        pickApp,
		Sessions:     sessionApp,
		Trades:       tradeApp,
		Strategies:   strategyApp,
		Events:       eventApp,
		EventRepo:    eventRepo,
		Orchestrator: orch,
	}, nil
}
