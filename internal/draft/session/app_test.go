package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

// fakeSessionRepo mirrors the Postgres repository's guarded updates: each
// clock mutator succeeds only from the statuses the real query's WHERE clause
// admits.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.DraftSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.DraftSession)}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, req CreateSessionRequest) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DraftID == req.DraftID {
			return nil, apperrors.Duplicate("session already exists for draft %s", req.DraftID)
		}
	}
	s := &models.DraftSession{
		ID:              req.ID,
		DraftID:         req.DraftID,
		Status:          models.SessionStatusPending,
		TimePerPickSec:  req.TimePerPickSec,
		AutoPickEnabled: req.AutoPickEnabled,
	}
	f.sessions[req.ID] = s
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id uuid.UUID) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session %s not found", id)
	}
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) GetSessionByDraft(_ context.Context, draftID uuid.UUID) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.DraftID == draftID {
			out := *s
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("no session for draft %s", draftID)
}

func (f *fakeSessionRepo) ArmClock(_ context.Context, id uuid.UUID, pickNumber int, deadline time.Time) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || (s.Status != models.SessionStatusPending && s.Status != models.SessionStatusRunning) {
		return nil, apperrors.InvalidState("session %s cannot be armed", id)
	}
	s.Status = models.SessionStatusRunning
	s.CurrentPickNumber = pickNumber
	s.Deadline = &deadline
	s.RemainingSec = nil
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) PauseClock(_ context.Context, id uuid.UUID, remainingSec float64) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.SessionStatusRunning {
		return nil, apperrors.InvalidState("session %s is not running", id)
	}
	s.Status = models.SessionStatusPaused
	s.Deadline = nil
	s.RemainingSec = &remainingSec
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) ResumeClock(_ context.Context, id uuid.UUID, deadline time.Time) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.SessionStatusPaused {
		return nil, apperrors.InvalidState("session %s is not paused", id)
	}
	s.Status = models.SessionStatusRunning
	s.Deadline = &deadline
	s.RemainingSec = nil
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) FinishSession(_ context.Context, id uuid.UUID) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status == models.SessionStatusFinished {
		return nil, apperrors.InvalidState("session %s is already finished", id)
	}
	s.Status = models.SessionStatusFinished
	s.Deadline = nil
	s.RemainingSec = nil
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) FetchNextDeadline(_ context.Context) (*NextDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *NextDeadline
	for _, s := range f.sessions {
		if s.Status != models.SessionStatusRunning || s.Deadline == nil {
			continue
		}
		if best == nil || s.Deadline.Before(*best.Deadline) {
			d := *s.Deadline
			best = &NextDeadline{SessionID: s.ID, DraftID: s.DraftID, Deadline: &d}
		}
	}
	return best, nil
}

func (f *fakeSessionRepo) FetchSessionsDueForPick(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uuid.UUID
	for _, s := range f.sessions {
		if s.Status == models.SessionStatusRunning && s.Deadline != nil && !s.Deadline.After(now) {
			out = append(out, s.ID)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func newTestSession(t *testing.T, app *App, timePerPick int, autoPick bool) *models.DraftSession {
	t.Helper()
	sess, err := app.CreateSession(context.Background(), CreateSessionRequest{
		ID:              uuid.New(),
		DraftID:         uuid.New(),
		TimePerPickSec:  timePerPick,
		AutoPickEnabled: autoPick,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return sess
}

func TestArm_SetsDeadlineFromTimePerPick(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)
	sess := newTestSession(t, app, 60, false)

	armed, err := app.Arm(context.Background(), sess.ID, 1)
	if err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if armed.Status != models.SessionStatusRunning {
		t.Errorf("status = %v, want RUNNING", armed.Status)
	}
	if armed.CurrentPickNumber != 1 {
		t.Errorf("current_pick_number = %d, want 1", armed.CurrentPickNumber)
	}
	want := clock.Now().Add(60 * time.Second)
	if armed.Deadline == nil || !armed.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", armed.Deadline, want)
	}
}

func TestArm_AutoPickFiresImmediately(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)
	sess := newTestSession(t, app, 60, true)

	armed, err := app.Arm(context.Background(), sess.ID, 1)
	if err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if armed.Deadline == nil || !armed.Deadline.Equal(clock.Now()) {
		t.Errorf("deadline = %v, want now", armed.Deadline)
	}

	due, err := app.FetchSessionsDueForPick(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchSessionsDueForPick: %v", err)
	}
	if len(due) != 1 || due[0] != sess.ID {
		t.Fatalf("due = %v, want the auto-pick session immediately", due)
	}
}

func TestPauseResume_PreservesRemainingTime(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)
	sess := newTestSession(t, app, 60, false)

	if _, err := app.Arm(context.Background(), sess.ID, 1); err != nil {
		t.Fatalf("Arm: %v", err)
	}

	// Burn 20s of clock, then pause with 40s on it.
	clock.Advance(20 * time.Second)
	paused, err := app.Pause(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.Status != models.SessionStatusPaused {
		t.Errorf("status = %v, want PAUSED", paused.Status)
	}
	if paused.Deadline != nil {
		t.Error("paused session still has a deadline")
	}
	if paused.RemainingSec == nil || *paused.RemainingSec != 40 {
		t.Fatalf("remaining_sec = %v, want 40", paused.RemainingSec)
	}

	// An hour passes while paused; none of it counts.
	clock.Advance(time.Hour)
	resumed, err := app.Resume(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	want := clock.Now().Add(40 * time.Second)
	if resumed.Deadline == nil || !resumed.Deadline.Equal(want) {
		t.Errorf("deadline after resume = %v, want %v", resumed.Deadline, want)
	}
	if resumed.RemainingSec != nil {
		t.Error("running session still carries remaining_sec")
	}

	// The full per-pick interval is not restored, only the balance.
	clock.Advance(39 * time.Second)
	due, _ := app.FetchSessionsDueForPick(context.Background(), 10)
	if len(due) != 0 {
		t.Fatal("session due before the preserved balance elapsed")
	}
	clock.Advance(time.Second)
	due, _ = app.FetchSessionsDueForPick(context.Background(), 10)
	if len(due) != 1 {
		t.Fatal("session not due after the preserved balance elapsed")
	}
}

func TestPause_AfterDeadlineClampsToZero(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)
	sess := newTestSession(t, app, 30, false)

	if _, err := app.Arm(context.Background(), sess.ID, 1); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	clock.Advance(45 * time.Second)

	paused, err := app.Pause(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if paused.RemainingSec == nil || *paused.RemainingSec != 0 {
		t.Fatalf("remaining_sec = %v, want 0 for an overdue pause", paused.RemainingSec)
	}
}

func TestClockGuards(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)
	sess := newTestSession(t, app, 60, false)

	// Pause before the clock ever ran.
	if _, err := app.Pause(context.Background(), sess.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("pause pending session error = %v, want InvalidState", err)
	}
	// Resume without a pause.
	if _, err := app.Resume(context.Background(), sess.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("resume pending session error = %v, want InvalidState", err)
	}

	if _, err := app.Arm(context.Background(), sess.ID, 1); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if _, err := app.Finish(context.Background(), sess.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	// Finished sessions cannot be rearmed or re-finished.
	if _, err := app.Arm(context.Background(), sess.ID, 2); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("arm finished session error = %v, want InvalidState", err)
	}
	if _, err := app.Finish(context.Background(), sess.ID); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("double finish error = %v, want InvalidState", err)
	}
}

func TestFetchNextDeadline_SoonestWins(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	app := NewApp(repo, clock, nil)

	slow := newTestSession(t, app, 120, false)
	fast := newTestSession(t, app, 30, false)

	if _, err := app.Arm(context.Background(), slow.ID, 1); err != nil {
		t.Fatalf("Arm slow: %v", err)
	}
	if _, err := app.Arm(context.Background(), fast.ID, 1); err != nil {
		t.Fatalf("Arm fast: %v", err)
	}

	nd, err := app.FetchNextDeadline(context.Background())
	if err != nil {
		t.Fatalf("FetchNextDeadline: %v", err)
	}
	if nd == nil || nd.SessionID != fast.ID {
		t.Fatalf("next deadline session = %v, want the 30s session", nd)
	}

	// Pausing the sooner session promotes the other.
	if _, err := app.Pause(context.Background(), fast.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	nd, err = app.FetchNextDeadline(context.Background())
	if err != nil {
		t.Fatalf("FetchNextDeadline: %v", err)
	}
	if nd == nil || nd.SessionID != slow.ID {
		t.Fatalf("next deadline session = %v, want the 120s session", nd)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	repo := newFakeSessionRepo()
	app := NewApp(repo, clockwork.NewFakeClock(), nil)

	if _, err := app.CreateSession(context.Background(), CreateSessionRequest{
		ID: uuid.New(), DraftID: uuid.New(), TimePerPickSec: 0,
	}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("zero time_per_pick error = %v, want Validation", err)
	}

	draftID := uuid.New()
	if _, err := app.CreateSession(context.Background(), CreateSessionRequest{
		ID: uuid.New(), DraftID: draftID, TimePerPickSec: 60,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := app.CreateSession(context.Background(), CreateSessionRequest{
		ID: uuid.New(), DraftID: draftID, TimePerPickSec: 60,
	}); !errors.Is(err, apperrors.ErrDuplicate) {
		t.Fatalf("second session error = %v, want Duplicate", err)
	}
}

// captureRecorder keeps every recorded event for assertions.
type captureRecorder struct {
	mu     sync.Mutex
	events []models.EventType
}

func (r *captureRecorder) Record(_ context.Context, _ uuid.UUID, eventType models.EventType, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *captureRecorder) recorded() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.EventType(nil), r.events...)
}

func TestClockEventsAppendToLog(t *testing.T) {
	repo := newFakeSessionRepo()
	clock := clockwork.NewFakeClock()
	rec := &captureRecorder{}
	app := NewApp(repo, clock, rec)
	sess := newTestSession(t, app, 60, false)

	if _, err := app.Arm(context.Background(), sess.ID, 1); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if _, err := app.Pause(context.Background(), sess.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if _, err := app.Resume(context.Background(), sess.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	want := []models.EventType{
		models.EventPickStarted,
		models.EventDraftPaused,
		models.EventDraftResumed,
	}
	got := rec.recorded()
	if len(got) != len(want) {
		t.Fatalf("recorded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}
