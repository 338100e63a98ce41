package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/events"
	"github.com/gridironlabs/draftsim/internal/models"
)

// DraftRepository defines what the draft app layer needs from the draft
// repository. TransitionStatus must be a guarded update: it succeeds only when
// the stored status is one of from, and a rejected transition leaves the row
// untouched.
type DraftRepository interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from []models.DraftStatus, to models.DraftStatus) (*models.Draft, error)
	UpdateDraftSettings(ctx context.Context, id uuid.UUID, settings models.DraftSettings) (*models.Draft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}

// App handles draft lifecycle business logic.
type App struct {
	repo     DraftRepository
	recorder events.Recorder
}

// NewApp creates a new draft App.
func NewApp(repo DraftRepository, recorder events.Recorder) *App {
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	return &App{
		repo:     repo,
		recorder: recorder,
	}
}

// CreateDraft creates a new draft in NOT_STARTED with validated settings.
// total_picks is fixed at rounds * picks_per_round and never changes after
// picks are initialized.
func (a *App) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.Draft, error) {
	if err := a.validateCreateDraftRequest(req); err != nil {
		return nil, err
	}

	draft, err := a.repo.CreateDraft(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Int("year", draft.Year).
		Int("total_picks", draft.TotalPicks).
		Msg("created draft")
	return draft, nil
}

// GetDraft retrieves a draft by ID.
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

// StartDraft moves a draft from NOT_STARTED or PAUSED to IN_PROGRESS.
func (a *App) StartDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.transition(ctx, id,
		[]models.DraftStatus{models.DraftStatusNotStarted, models.DraftStatusPaused},
		models.DraftStatusInProgress)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	if draft.StartedAt != nil {
		startedAt = *draft.StartedAt
	}
	a.record(ctx, draft.ID, models.EventDraftStarted, events.DraftStartedPayload{
		DraftID:     draft.ID.String(),
		StartedAt:   startedAt,
		TotalRounds: draft.Settings.Rounds,
		TotalPicks:  draft.TotalPicks,
	})
	return draft, nil
}

// PauseDraft moves a draft from IN_PROGRESS to PAUSED.
func (a *App) PauseDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return a.transition(ctx, id,
		[]models.DraftStatus{models.DraftStatusInProgress},
		models.DraftStatusPaused)
}

// CompleteDraft moves a draft from IN_PROGRESS or PAUSED to COMPLETED.
func (a *App) CompleteDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := a.transition(ctx, id,
		[]models.DraftStatus{models.DraftStatusInProgress, models.DraftStatusPaused},
		models.DraftStatusCompleted)
	if err != nil {
		return nil, err
	}

	completedAt := time.Now()
	if draft.CompletedAt != nil {
		completedAt = *draft.CompletedAt
	}
	a.record(ctx, draft.ID, models.EventDraftCompleted, events.DraftCompletedPayload{
		DraftID:     draft.ID.String(),
		CompletedAt: completedAt,
		TotalPicks:  draft.TotalPicks,
	})
	return draft, nil
}

// transition performs a guarded status update. A transition rejected by the
// guard is reported as InvalidState with the status the draft actually holds.
func (a *App) transition(ctx context.Context, id uuid.UUID, from []models.DraftStatus, to models.DraftStatus) (*models.Draft, error) {
	draft, err := a.repo.TransitionStatus(ctx, id, from, to)
	if err == nil {
		log.Info().
			Str("draft_id", id.String()).
			Str("status", string(to)).
			Msg("draft status updated")
		return draft, nil
	}
	if !apperrors.Retryable(err) {
		// Guard rejected or draft missing: re-read so the error names the
		// current status and confirms nothing changed.
		current, getErr := a.repo.GetDraft(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("draft not found: %w", getErr)
		}
		return nil, apperrors.InvalidState("cannot transition draft %s from %s to %s", id, current.Status, to)
	}
	return nil, fmt.Errorf("failed to update draft status: %w", err)
}

// UpdateDraftSettings replaces settings on a draft that has not started.
func (a *App) UpdateDraftSettings(ctx context.Context, id uuid.UUID, req UpdateDraftSettingsRequest) (*models.Draft, error) {
	current, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("draft not found: %w", err)
	}
	if current.Status != models.DraftStatusNotStarted {
		return nil, apperrors.InvalidState("can only update drafts with status %s, current status is %s",
			models.DraftStatusNotStarted, current.Status)
	}
	if req.Settings == nil {
		return current, nil
	}
	if err := a.validateDraftSettings(*req.Settings); err != nil {
		return nil, err
	}

	draft, err := a.repo.UpdateDraftSettings(ctx, id, *req.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update draft settings: %w", err)
	}
	return draft, nil
}

// DeleteDraft deletes a draft by ID (only allowed for NOT_STARTED drafts).
func (a *App) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	draft, err := a.repo.GetDraft(ctx, id)
	if err != nil {
		return fmt.Errorf("draft not found: %w", err)
	}
	if draft.Status != models.DraftStatusNotStarted {
		return apperrors.InvalidState("cannot delete draft with status %s, only %s drafts can be deleted",
			draft.Status, models.DraftStatusNotStarted)
	}

	if err := a.repo.DeleteDraft(ctx, id); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	log.Info().Str("draft_id", id.String()).Msg("deleted draft")
	return nil
}

func (a *App) record(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload any) {
	if err := a.recorder.Record(ctx, draftID, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to record draft event")
	}
}

// Validation methods

func (a *App) validateCreateDraftRequest(req CreateDraftRequest) error {
	if req.ID == uuid.Nil {
		return apperrors.Validation("id is required")
	}
	if req.Year <= 0 {
		return apperrors.Validation("year is required")
	}
	return a.validateDraftSettings(req.Settings)
}

func (a *App) validateDraftSettings(settings models.DraftSettings) error {
	if settings.Rounds <= 0 {
		return apperrors.Validation("rounds must be greater than 0")
	}
	if settings.PicksPerRound <= 0 {
		return apperrors.Validation("picks_per_round must be greater than 0")
	}
	if settings.TimePerPickSec < 0 {
		return apperrors.Validation("time_per_pick_sec cannot be negative")
	}
	switch settings.OrderPolicy {
	case "", models.OrderPolicyStraight, models.OrderPolicySnake:
	default:
		return apperrors.Validation("invalid order policy: %s", settings.OrderPolicy)
	}
	if settings.ThirdRoundReversal && settings.OrderPolicy != models.OrderPolicySnake {
		return apperrors.Validation("third_round_reversal requires the snake order policy")
	}
	return nil
}
