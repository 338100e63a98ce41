package trade

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/chart"
	"github.com/gridironlabs/draftsim/internal/draft/events"
	"github.com/gridironlabs/draftsim/internal/models"
)

// TradeRepository defines what the trade app layer needs from the trade
// repository. SettleTrade is transactional: every transfer applies and the
// trade flips to ACCEPTED, or nothing is observed — a transfer whose pick is
// no longer owned-and-available fails the whole settlement with InvalidState
// and the trade stays PROPOSED.
type TradeRepository interface {
	CreateTrade(ctx context.Context, trade models.PickTrade, details []models.PickTradeDetail) error
	GetTrade(ctx context.Context, id uuid.UUID) (*models.PickTrade, error)
	GetTradeDetails(ctx context.Context, tradeID uuid.UUID) ([]models.PickTradeDetail, error)
	FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PickTrade, error)
	IsPickInActiveTrade(ctx context.Context, pickID uuid.UUID) (bool, error)
	SettleTrade(ctx context.Context, tradeID uuid.UUID, transfers []PickTransfer, respondedAt time.Time) error
	RejectTrade(ctx context.Context, tradeID uuid.UUID, respondedAt time.Time) (*models.PickTrade, error)
}

// PickReader resolves pick slots for validation and pricing.
type PickReader interface {
	GetDraftPick(ctx context.Context, id uuid.UUID) (*models.DraftPick, error)
}

// SessionSource resolves the session a trade is negotiated in.
type SessionSource interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
}

// App handles trade negotiation business logic.
type App struct {
	repo     TradeRepository
	picks    PickReader
	sessions SessionSource
	recorder events.Recorder

	chartMu sync.RWMutex
	chart   *chart.Chart
}

// NewApp creates a new trade App pricing picks with the default chart.
func NewApp(repo TradeRepository, picks PickReader, sessions SessionSource, recorder events.Recorder) *App {
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	return &App{
		repo:     repo,
		picks:    picks,
		sessions: sessions,
		recorder: recorder,
		chart:    chart.Default(),
	}
}

// SetValueChart switches the valuation methodology used to price proposals.
// Values on already-proposed trades are never recomputed.
func (a *App) SetValueChart(t chart.ChartType) error {
	c, err := chart.New(t)
	if err != nil {
		return err
	}
	a.chartMu.Lock()
	a.chart = c
	a.chartMu.Unlock()

	log.Info().Str("chart", string(t)).Msg("value chart selected")
	return nil
}

// ActiveChart returns the methodology currently pricing proposals.
func (a *App) ActiveChart() chart.ChartType {
	a.chartMu.RLock()
	defer a.chartMu.RUnlock()
	return a.chart.Type()
}

// ProposeTrade validates and records a pick-for-pick offer. Both sets must be
// non-empty, owned by the claimed teams, unmade, and free of other open
// trades; each pick's value is captured from the active chart at proposal
// time.
func (a *App) ProposeTrade(ctx context.Context, req ProposeTradeRequest) (*models.PickTrade, error) {
	if err := a.validateProposeTradeRequest(req); err != nil {
		return nil, err
	}
	sess, err := a.sessions.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	fromValue, fromDetails, err := a.priceSide(ctx, req.FromTeamID, req.FromPickIDs, models.TradeDirectionFromTeam)
	if err != nil {
		return nil, err
	}
	toValue, toDetails, err := a.priceSide(ctx, req.ToTeamID, req.ToPickIDs, models.TradeDirectionToTeam)
	if err != nil {
		return nil, err
	}

	trade := models.PickTrade{
		ID:              uuid.New(),
		SessionID:       sess.ID,
		FromTeamID:      req.FromTeamID,
		ToTeamID:        req.ToTeamID,
		Status:          models.TradeStatusProposed,
		FromTeamValue:   fromValue,
		ToTeamValue:     toValue,
		ValueDifference: math.Abs(fromValue - toValue),
		ProposedAt:      time.Now(),
	}
	details := make([]models.PickTradeDetail, 0, len(fromDetails)+len(toDetails))
	for _, d := range append(fromDetails, toDetails...) {
		d.ID = uuid.New()
		d.TradeID = trade.ID
		details = append(details, d)
	}

	if err := a.repo.CreateTrade(ctx, trade, details); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	a.record(ctx, sess.DraftID, models.EventTradeProposed, tradePayload(trade, details))
	log.Info().
		Str("trade_id", trade.ID.String()).
		Str("from_team", req.FromTeamID.String()).
		Str("to_team", req.ToTeamID.String()).
		Float64("from_value", fromValue).
		Float64("to_value", toValue).
		Msg("trade proposed")
	return &trade, nil
}

// AcceptTrade re-validates the involved picks and atomically reassigns
// ownership while flipping the trade to ACCEPTED. A pick made or re-owned
// since proposal fails the settlement with InvalidState and the trade stays
// PROPOSED for an explicit retry or rejection.
func (a *App) AcceptTrade(ctx context.Context, tradeID uuid.UUID) (*models.PickTrade, error) {
	trade, err := a.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("trade not found: %w", err)
	}
	if trade.Status != models.TradeStatusProposed {
		return nil, apperrors.InvalidState("trade %s is %s, only PROPOSED trades can be accepted", tradeID, trade.Status)
	}

	details, err := a.repo.GetTradeDetails(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade details: %w", err)
	}

	transfers := make([]PickTransfer, len(details))
	for i, d := range details {
		t := PickTransfer{PickID: d.PickID}
		switch d.Direction {
		case models.TradeDirectionFromTeam:
			t.FromTeamID = trade.FromTeamID
			t.ToTeamID = trade.ToTeamID
		case models.TradeDirectionToTeam:
			t.FromTeamID = trade.ToTeamID
			t.ToTeamID = trade.FromTeamID
		}
		transfers[i] = t
	}

	respondedAt := time.Now()
	if err := a.repo.SettleTrade(ctx, tradeID, transfers, respondedAt); err != nil {
		return nil, err
	}

	settled, err := a.repo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload settled trade: %w", err)
	}

	sess, err := a.sessions.GetSession(ctx, trade.SessionID)
	if err == nil {
		a.record(ctx, sess.DraftID, models.EventTradeAccepted, tradePayload(*settled, details))
	}
	log.Info().
		Str("trade_id", tradeID.String()).
		Int("picks", len(transfers)).
		Msg("trade accepted")
	return settled, nil
}

// RejectTrade closes a proposed trade without any ownership change.
func (a *App) RejectTrade(ctx context.Context, tradeID uuid.UUID) (*models.PickTrade, error) {
	rejected, err := a.repo.RejectTrade(ctx, tradeID, time.Now())
	if err != nil {
		return nil, err
	}

	sess, err := a.sessions.GetSession(ctx, rejected.SessionID)
	if err == nil {
		a.record(ctx, sess.DraftID, models.EventTradeRejected, tradePayload(*rejected, nil))
	}
	log.Info().Str("trade_id", tradeID.String()).Msg("trade rejected")
	return rejected, nil
}

// FindPendingForTeam returns open trades awaiting the team's response. Only
// the recipient sees a proposal as pending, never the proposer.
func (a *App) FindPendingForTeam(ctx context.Context, teamID uuid.UUID) ([]models.PickTrade, error) {
	trades, err := a.repo.FindPendingForTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending trades: %w", err)
	}
	return trades, nil
}

// IsTradeFair prices both sides of a proposal under the active chart's
// fairness rule.
func (a *App) IsTradeFair(trade *models.PickTrade, thresholdPct float64) bool {
	return chart.IsTradeFair(trade.FromTeamValue, trade.ToTeamValue, thresholdPct)
}

// priceSide validates one side's picks and prices them under the active
// chart.
func (a *App) priceSide(ctx context.Context, teamID uuid.UUID, pickIDs []uuid.UUID, direction models.TradeDirection) (float64, []models.PickTradeDetail, error) {
	a.chartMu.RLock()
	c := a.chart
	a.chartMu.RUnlock()

	var total float64
	details := make([]models.PickTradeDetail, 0, len(pickIDs))
	for _, pickID := range pickIDs {
		p, err := a.picks.GetDraftPick(ctx, pickID)
		if err != nil {
			return 0, nil, fmt.Errorf("pick %s: %w", pickID, err)
		}
		if p.TeamID != teamID {
			return 0, nil, apperrors.Validation("pick %d is not owned by team %s", p.OverallPick, teamID)
		}
		if !p.Available() {
			return 0, nil, apperrors.InvalidState("pick %d is already made", p.OverallPick)
		}
		inTrade, err := a.repo.IsPickInActiveTrade(ctx, pickID)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to check open trades for pick %s: %w", pickID, err)
		}
		if inTrade {
			return 0, nil, apperrors.InvalidState("pick %d is already part of an open trade", p.OverallPick)
		}

		value, err := c.Value(p.OverallPick)
		if err != nil {
			return 0, nil, err
		}
		total += value
		details = append(details, models.PickTradeDetail{
			PickID:    pickID,
			Direction: direction,
			PickValue: value,
		})
	}
	return total, details, nil
}

func (a *App) validateProposeTradeRequest(req ProposeTradeRequest) error {
	if req.SessionID == uuid.Nil {
		return apperrors.Validation("session_id is required")
	}
	if req.FromTeamID == uuid.Nil || req.ToTeamID == uuid.Nil {
		return apperrors.Validation("both teams are required")
	}
	if req.FromTeamID == req.ToTeamID {
		return apperrors.Validation("a team cannot trade with itself")
	}
	if len(req.FromPickIDs) == 0 || len(req.ToPickIDs) == 0 {
		return apperrors.Validation("both pick sets must be non-empty")
	}
	return nil
}

func (a *App) record(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload any) {
	if err := a.recorder.Record(ctx, draftID, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to record trade event")
	}
}

func tradePayload(trade models.PickTrade, details []models.PickTradeDetail) events.TradePayload {
	pickIDs := make([]string, len(details))
	for i, d := range details {
		pickIDs[i] = d.PickID.String()
	}
	return events.TradePayload{
		TradeID:       trade.ID.String(),
		FromTeamID:    trade.FromTeamID.String(),
		ToTeamID:      trade.ToTeamID.String(),
		FromTeamValue: trade.FromTeamValue,
		ToTeamValue:   trade.ToTeamValue,
		PickIDs:       pickIDs,
	}
}
