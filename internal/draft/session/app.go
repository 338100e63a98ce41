package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/events"
	"github.com/gridironlabs/draftsim/internal/models"
)

// SessionRepository defines what the session app layer needs from the
// session repository. The clock mutators are guarded updates keyed on the
// stored status, so a rejected call leaves the row untouched.
type SessionRepository interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	GetSessionByDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSession, error)
	ArmClock(ctx context.Context, id uuid.UUID, pickNumber int, deadline time.Time) (*models.DraftSession, error)
	PauseClock(ctx context.Context, id uuid.UUID, remainingSec float64) (*models.DraftSession, error)
	ResumeClock(ctx context.Context, id uuid.UUID, deadline time.Time) (*models.DraftSession, error)
	FinishSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	FetchNextDeadline(ctx context.Context) (*NextDeadline, error)
	FetchSessionsDueForPick(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// App owns the per-draft clock state. The countdown is data — a deadline
// while running, a remaining balance while paused — never a blocking wait,
// so pause and resume are ordinary state writes.
type App struct {
	repo     SessionRepository
	clock    clockwork.Clock
	recorder events.Recorder
}

// NewApp creates a new session App.
func NewApp(repo SessionRepository, clock clockwork.Clock, recorder events.Recorder) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if recorder == nil {
		recorder = events.NopRecorder{}
	}
	return &App{
		repo:     repo,
		clock:    clock,
		recorder: recorder,
	}
}

// CreateSession opens the clock session for a draft.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	if req.ID == uuid.Nil {
		return nil, apperrors.Validation("id is required")
	}
	if req.DraftID == uuid.Nil {
		return nil, apperrors.Validation("draft_id is required")
	}
	if req.TimePerPickSec <= 0 {
		return nil, apperrors.Validation("time_per_pick_sec must be greater than 0")
	}

	sess, err := a.repo.CreateSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("draft_id", sess.DraftID.String()).
		Bool("auto_pick", sess.AutoPickEnabled).
		Msg("created draft session")
	return sess, nil
}

// GetSession retrieves a session by ID.
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

// GetSessionByDraft retrieves the session for a draft.
func (a *App) GetSessionByDraft(ctx context.Context, draftID uuid.UUID) (*models.DraftSession, error) {
	sess, err := a.repo.GetSessionByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session by draft: %w", err)
	}
	return sess, nil
}

// Arm puts the given pick on the clock and sets its deadline. When auto-pick
// is enabled the deadline is now, so the scheduler fires immediately.
func (a *App) Arm(ctx context.Context, id uuid.UUID, pickNumber int) (*models.DraftSession, error) {
	if pickNumber <= 0 {
		return nil, apperrors.Validation("pick_number must be greater than 0")
	}
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	now := a.clock.Now()
	deadline := now.Add(time.Duration(sess.TimePerPickSec) * time.Second)
	if sess.AutoPickEnabled {
		deadline = now
	}

	armed, err := a.repo.ArmClock(ctx, id, pickNumber, deadline)
	if err != nil {
		return nil, err
	}

	a.record(ctx, armed.DraftID, models.EventPickStarted, events.PickStartedPayload{
		OverallPick:    pickNumber,
		StartedAt:      now,
		TimeoutAt:      deadline,
		TimePerPickSec: armed.TimePerPickSec,
	})
	log.Debug().
		Str("session_id", id.String()).
		Int("pick_number", pickNumber).
		Time("deadline", deadline).
		Msg("armed pick clock")
	return armed, nil
}

// Pause stops the countdown without losing elapsed time: the unexpired
// balance is stored so a resume continues from it rather than a fresh
// interval.
func (a *App) Pause(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	remaining := float64(sess.TimePerPickSec)
	if sess.Deadline != nil {
		remaining = sess.Deadline.Sub(a.clock.Now()).Seconds()
		if remaining < 0 {
			remaining = 0
		}
	}

	paused, err := a.repo.PauseClock(ctx, id, remaining)
	if err != nil {
		return nil, err
	}

	a.record(ctx, paused.DraftID, models.EventDraftPaused, events.DraftPausedPayload{
		DraftID:      paused.DraftID.String(),
		PausedAt:     a.clock.Now(),
		RemainingSec: remaining,
	})
	log.Info().
		Str("session_id", id.String()).
		Float64("remaining_sec", remaining).
		Msg("session paused")
	return paused, nil
}

// Resume restarts the countdown with the balance preserved by Pause. Time
// spent paused never counts against the per-pick deadline.
func (a *App) Resume(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	sess, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	remaining := float64(sess.TimePerPickSec)
	if sess.RemainingSec != nil {
		remaining = *sess.RemainingSec
	}
	deadline := a.clock.Now().Add(time.Duration(remaining * float64(time.Second)))

	resumed, err := a.repo.ResumeClock(ctx, id, deadline)
	if err != nil {
		return nil, err
	}

	a.record(ctx, resumed.DraftID, models.EventDraftResumed, events.DraftResumedPayload{
		DraftID:      resumed.DraftID.String(),
		ResumedAt:    a.clock.Now(),
		RemainingSec: remaining,
	})
	log.Info().
		Str("session_id", id.String()).
		Float64("remaining_sec", remaining).
		Msg("session resumed")
	return resumed, nil
}

// Finish closes the session and disarms its clock.
func (a *App) Finish(ctx context.Context, id uuid.UUID) (*models.DraftSession, error) {
	sess, err := a.repo.FinishSession(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session_id", id.String()).Msg("session finished")
	return sess, nil
}

// FetchNextDeadline returns the soonest armed deadline across running
// sessions, or nil when no session is on the clock.
func (a *App) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	nd, err := a.repo.FetchNextDeadline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return nd, nil
}

// FetchSessionsDueForPick returns sessions whose deadline has passed.
func (a *App) FetchSessionsDueForPick(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		return nil, apperrors.Validation("limit must be greater than 0")
	}
	ids, err := a.repo.FetchSessionsDueForPick(ctx, a.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due sessions: %w", err)
	}
	return ids, nil
}

func (a *App) record(ctx context.Context, draftID uuid.UUID, eventType models.EventType, payload any) {
	if err := a.recorder.Record(ctx, draftID, eventType, payload); err != nil {
		log.Error().Err(err).Str("event_type", string(eventType)).Msg("failed to record session event")
	}
}
