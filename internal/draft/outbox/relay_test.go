package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gridironlabs/draftsim/internal/apperrors"
	"github.com/gridironlabs/draftsim/internal/models"
)

type fakeEventRepo struct {
	events []models.DraftEvent
	noSess bool
}

func (f *fakeEventRepo) InsertEvent(_ context.Context, draftID uuid.UUID, eventType models.EventType, payload json.RawMessage) error {
	if f.noSess {
		return apperrors.NotFound("no session exists for draft %s", draftID)
	}
	f.events = append(f.events, models.DraftEvent{
		ID:        uuid.New(),
		SessionID: draftID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeEventRepo) FetchUnsentEvents(_ context.Context, limit int) ([]models.DraftEvent, error) {
	var out []models.DraftEvent
	for _, e := range f.events {
		if e.SentAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeEventRepo) MarkEventSent(_ context.Context, id uuid.UUID) error {
	for i := range f.events {
		if f.events[i].ID == id && f.events[i].SentAt == nil {
			now := time.Now()
			f.events[i].SentAt = &now
			return nil
		}
	}
	return apperrors.NotFound("unsent event %s not found", id)
}

func (f *fakeEventRepo) ListEventsBySession(_ context.Context, sessionID uuid.UUID) ([]models.DraftEvent, error) {
	var out []models.DraftEvent
	for _, e := range f.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePublisher struct {
	published []models.DraftEvent
	failAfter int // fail every publish once this many have succeeded; <0 never fails
}

func (p *fakePublisher) Publish(_ context.Context, event models.DraftEvent) error {
	if p.failAfter >= 0 && len(p.published) >= p.failAfter {
		return errors.New("bus unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func TestRecord_AppendsEvent(t *testing.T) {
	repo := &fakeEventRepo{}
	app := NewApp(repo)

	draftID := uuid.New()
	payload := map[string]string{"pick_id": uuid.New().String()}
	if err := app.Record(context.Background(), draftID, models.EventPickMade, payload); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(repo.events))
	}
	if repo.events[0].EventType != models.EventPickMade {
		t.Errorf("event type = %v, want PickMade", repo.events[0].EventType)
	}
}

func TestRecord_NoSessionSurfacesError(t *testing.T) {
	app := NewApp(&fakeEventRepo{noSess: true})

	err := app.Record(context.Background(), uuid.New(), models.EventPickMade, nil)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("Record error = %v, want NotFound", err)
	}
}

func TestRelayDrain_MarksOnlyPublished(t *testing.T) {
	repo := &fakeEventRepo{}
	app := NewApp(repo)
	for i := 0; i < 3; i++ {
		if err := app.Record(context.Background(), uuid.New(), models.EventPickMade, map[string]int{"n": i}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	// The bus dies after the first publish; only that event may be marked.
	pub := &fakePublisher{failAfter: 1}
	relay := NewRelay(repo, pub, DefaultRelayConfig())
	relay.drain(context.Background())

	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	unsent, _ := repo.FetchUnsentEvents(context.Background(), 10)
	if len(unsent) != 2 {
		t.Fatalf("%d events still unsent, want 2", len(unsent))
	}

	// Bus recovers; the rest drain in order and nothing is re-published.
	pub.failAfter = -1
	relay.drain(context.Background())
	if len(pub.published) != 3 {
		t.Fatalf("published %d events total, want 3", len(pub.published))
	}
	unsent, _ = repo.FetchUnsentEvents(context.Background(), 10)
	if len(unsent) != 0 {
		t.Fatalf("%d events still unsent, want 0", len(unsent))
	}
}

func TestRelayStartStop(t *testing.T) {
	repo := &fakeEventRepo{}
	relay := NewRelay(repo, &fakePublisher{failAfter: -1}, RelayConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
	})

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := relay.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
	if err := relay.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := relay.Stop(); err == nil {
		t.Fatal("second Stop should fail")
	}
}
