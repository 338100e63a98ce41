package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gridironlabs/draftsim/internal/models"
)

// EventPublisher pushes one draft event to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, event models.DraftEvent) error
}

// RelayConfig tunes the outbox relay loop.
type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
	}
}

// Relay drains unsent draft events to the publisher. Events are marked sent
// only after a successful publish, so a crash replays rather than drops; the
// publisher's dedup window absorbs the resulting duplicates.
type Relay struct {
	repo      EventRepository
	publisher EventPublisher
	config    RelayConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewRelay(repo EventRepository, publisher EventPublisher, cfg RelayConfig) *Relay {
	return &Relay{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("outbox relay already running")
	}
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx)

	log.Info().
		Dur("poll_interval", r.config.PollInterval).
		Int("batch_size", r.config.BatchSize).
		Msg("outbox relay started")
	return nil
}

func (r *Relay) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return fmt.Errorf("outbox relay not running")
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)
	r.wg.Wait()

	log.Info().Msg("outbox relay stopped")
	return nil
}

func (r *Relay) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	// Drain immediately on start.
	r.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	events, err := r.repo.FetchUnsentEvents(ctx, r.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent events")
		return
	}

	for _, event := range events {
		if err := r.publisher.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", string(event.EventType)).
				Msg("failed to publish event, will retry next poll")
			return
		}
		if err := r.repo.MarkEventSent(ctx, event.ID); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Msg("failed to mark event sent")
			return
		}
	}

	if len(events) > 0 {
		log.Debug().Int("count", len(events)).Msg("outbox events relayed")
	}
}
