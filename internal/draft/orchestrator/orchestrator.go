// Package orchestrator runs the draft clock: it sleeps until the earliest
// session deadline, fires auto-picks for teams that ran out of time, and
// finalizes drafts once the last pick is made.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/draft/pick"
	"github.com/gridironlabs/draftsim/internal/draft/session"
	"github.com/gridironlabs/draftsim/internal/models"
)

// Clock is the interface used for time operations. Production wiring passes
// clockwork.NewRealClock(); tests pass a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// SessionService defines what the orchestrator needs from the session app.
type SessionService interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	Arm(ctx context.Context, id uuid.UUID, pickNumber int) (*models.DraftSession, error)
	Finish(ctx context.Context, id uuid.UUID) (*models.DraftSession, error)
	FetchNextDeadline(ctx context.Context) (*session.NextDeadline, error)
	FetchSessionsDueForPick(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// PickService defines what the orchestrator needs from the pick app.
type PickService interface {
	FindNextPick(ctx context.Context, draftID uuid.UUID) (*models.DraftPick, error)
	MakePick(ctx context.Context, req pick.MakePickRequest) (*models.DraftPick, error)
	CountRemainingPicks(ctx context.Context, draftID uuid.UUID) (int, error)
}

// DraftService defines what the orchestrator needs from the draft app.
type DraftService interface {
	CompleteDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

type Orchestrator struct {
	sessions   SessionService
	picks      PickService
	drafts     DraftService
	strat      AutoPickStrategy
	batchSize  int // how many due sessions to claim at once
	clock      Clock
	wakeCh     chan struct{}
	instanceID string // unique ID for this scheduler instance

	// Worker pool configuration
	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates a new draft orchestrator with a worker pool.
func NewOrchestrator(sessions SessionService, picks PickService, drafts DraftService, strat AutoPickStrategy, batchSize int, clock Clock) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	numWorkers := 10
	return &Orchestrator{
		sessions:   sessions,
		picks:      picks,
		drafts:     drafts,
		strat:      strat,
		batchSize:  batchSize,
		clock:      clock,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8], // short ID for logging

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler to re-read the next deadline. Call it after any
// operation that may have produced a sooner deadline (arm, resume).
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// RunScheduler loops until ctx is cancelled, sleeping until the next session
// deadline and dispatching expired sessions to the worker pool.
func (o *Orchestrator) RunScheduler(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.numWorkers).Msg("scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	defer func() {
		log.Info().Str("instance", o.instanceID).Msg("shutting down workers")
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	timer := o.clock.NewTimer(0)
	defer timer.Stop()

	const idlePollDuration = 5 * time.Second
	retryCount := 0
	const maxRetries = 3

	for {
		select {
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("drained wake channel")
		default:
		}

		nd, err := o.sessions.FetchNextDeadline(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxRetries {
				log.Error().
					Err(err).
					Int("retry", retryCount).
					Str("instance", o.instanceID).
					Msg("error fetching next deadline, retrying")
				timer.Reset(time.Second * time.Duration(retryCount))
				select {
				case <-timer.Chan():
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching next deadline after retries")
			return err
		}
		retryCount = 0

		if nd == nil || nd.Deadline == nil {
			// Nothing armed - idle with timer reuse.
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during idle")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up from idle")
				continue
			}
		}

		wait := nd.Deadline.Sub(o.clock.Now())
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
				log.Info().Str("instance", o.instanceID).Msg("timer fired, fetching due sessions")
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during wait")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up early, new sooner deadline")
				continue
			}
		}

		due, err := o.sessions.FetchSessionsDueForPick(ctx, o.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching due sessions")
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Int("batch_size", o.batchSize).
				Str("instance", o.instanceID).
				Msg("processing due sessions")

			for _, sessionID := range due {
				o.inFlightMu.Lock()
				if o.inFlight[sessionID] {
					log.Debug().Str("session_id", sessionID.String()).Str("instance", o.instanceID).Msg("skipping session already in flight")
					o.inFlightMu.Unlock()
					continue
				}
				o.inFlight[sessionID] = true
				o.inFlightMu.Unlock()

				select {
				case <-ctx.Done():
					o.inFlightMu.Lock()
					delete(o.inFlight, sessionID)
					o.inFlightMu.Unlock()
					log.Info().Str("instance", o.instanceID).Msg("shutdown while queueing timeouts")
					return nil
				case o.workCh <- sessionID:
					log.Debug().Str("session_id", sessionID.String()).Str("instance", o.instanceID).Msg("queued timeout for worker")
				}
			}
		}
	}
}

// handleTimeout fires an auto-pick for one expired session. The session is
// re-read first so a pause or finish that landed after the due query makes
// this a no-op.
func (o *Orchestrator) handleTimeout(ctx context.Context, sessionID uuid.UUID) error {
	sess, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session for timeout: %w", err)
	}
	if sess.Status != models.SessionStatusRunning {
		log.Debug().
			Str("session_id", sessionID.String()).
			Str("status", string(sess.Status)).
			Msg("session no longer running, dropping timeout")
		return nil
	}
	if sess.Deadline == nil || sess.Deadline.After(o.clock.Now()) {
		// Re-armed for a later pick since the due query ran.
		return nil
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("draft_id", sess.DraftID.String()).
		Int("current_pick", sess.CurrentPickNumber).
		Msg("auto-pick timeout firing")

	slot, err := o.picks.FindNextPick(ctx, sess.DraftID)
	if err != nil {
		return fmt.Errorf("failed to find pick on the clock: %w", err)
	}
	if slot == nil {
		return o.finalizeIfComplete(ctx, sess)
	}
	if slot.OverallPick != sess.CurrentPickNumber {
		// Someone already handled this expiry; re-sync the clock to the
		// pick actually on it.
		return o.advance(ctx, sess)
	}

	playerID, err := o.strat.SelectPlayer(ctx, *sess, *slot)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("auto-pick strategy failed")
		return nil
	}

	if _, err := o.picks.MakePick(ctx, pick.MakePickRequest{PickID: slot.ID, PlayerID: playerID, Auto: true}); err != nil {
		// A human pick landed between the deadline and ours. Lost race, not
		// a fault; re-arm for whatever pick is now on the clock.
		if !errors.Is(err, apperrors.ErrInvalidState) {
			return fmt.Errorf("auto-pick failed: %w", err)
		}
		log.Debug().
			Str("session_id", sessionID.String()).
			Str("pick_id", slot.ID.String()).
			Msg("auto-pick lost race to a human pick")
	}

	return o.advance(ctx, sess)
}

// advance re-arms the clock for the next available pick, or finalizes the
// draft when none remain.
func (o *Orchestrator) advance(ctx context.Context, sess *models.DraftSession) error {
	next, err := o.picks.FindNextPick(ctx, sess.DraftID)
	if err != nil {
		return fmt.Errorf("failed to find next pick: %w", err)
	}
	if next == nil {
		return o.finalizeIfComplete(ctx, sess)
	}

	if _, err := o.sessions.Arm(ctx, sess.ID, next.OverallPick); err != nil {
		// Paused or finished while we were picking; the resume path re-arms.
		if errors.Is(err, apperrors.ErrInvalidState) {
			log.Debug().Str("session_id", sess.ID.String()).Msg("session not armable, skipping re-arm")
			return nil
		}
		return fmt.Errorf("failed to re-arm session: %w", err)
	}
	o.Wake()
	return nil
}

func (o *Orchestrator) finalizeIfComplete(ctx context.Context, sess *models.DraftSession) error {
	remaining, err := o.picks.CountRemainingPicks(ctx, sess.DraftID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	if _, err := o.drafts.CompleteDraft(ctx, sess.DraftID); err != nil && !errors.Is(err, apperrors.ErrInvalidState) {
		return err
	}
	if _, err := o.sessions.Finish(ctx, sess.ID); err != nil && !errors.Is(err, apperrors.ErrInvalidState) {
		return err
	}

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("draft_id", sess.DraftID.String()).
		Msg("draft finalized, all picks made")
	return nil
}

// worker processes session timeouts from the work channel.
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	log.Debug().
		Str("instance", o.instanceID).
		Int("worker_id", workerID).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case sessionID, ok := <-o.workCh:
			if !ok {
				return
			}

			if err := o.handleTimeout(ctx, sessionID); err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("worker timeout handling failed")
			}

			// Clean up in-flight tracking regardless of success/failure.
			o.inFlightMu.Lock()
			delete(o.inFlight, sessionID)
			o.inFlightMu.Unlock()
		}
	}
}
