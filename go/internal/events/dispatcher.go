package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrDispatcherRunning    = errors.New("event dispatcher already running")
	ErrDispatcherNotRunning = errors.New("event dispatcher not running")
)

type DispatcherConfig struct {
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		BufferSize: 1024,
		MaxRetries: 3,
		RetryDelay: 200 * time.Millisecond,
	}
}

// Dispatcher decouples the round loop from publishing. Enqueue never blocks;
// a worker goroutine hands events to the Publisher with retries.
type Dispatcher struct {
	publisher Publisher
	config    DispatcherConfig
	queue     chan Envelope
	dropped   atomic.Int64

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewDispatcher(publisher Publisher, cfg DispatcherConfig) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultDispatcherConfig().BufferSize
	}
	return &Dispatcher{
		publisher: publisher,
		config:    cfg,
		queue:     make(chan Envelope, cfg.BufferSize),
	}
}

// Enqueue schedules env for publishing. It reports false when the queue is
// full and the event was dropped.
func (d *Dispatcher) Enqueue(env Envelope) bool {
	select {
	case d.queue <- env:
		return true
	default:
		d.dropped.Add(1)
		log.Warn().
			Str("event_id", env.ID.String()).
			Str("event_type", string(env.Type)).
			Msg("event queue full, dropping event")
		return false
	}
}

// Dropped counts events discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return ErrDispatcherRunning
	}
	d.running = true
	d.stopChan = make(chan struct{})
	stop := d.stopChan
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run(ctx, stop)

	log.Info().Int("buffer_size", d.config.BufferSize).Msg("event dispatcher started")
	return nil
}

// Stop publishes whatever is still queued, then stops the worker.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrDispatcherNotRunning
	}
	d.running = false
	stop := d.stopChan
	d.mu.Unlock()

	close(stop)
	d.wg.Wait()

	log.Info().Msg("event dispatcher stopped")
	return nil
}

// run publishes until stopped or cancelled. Both paths flush the queue with
// a context that outlives ctx.
func (d *Dispatcher) run(ctx context.Context, stop <-chan struct{}) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return
		case <-stop:
			d.drain(context.WithoutCancel(ctx))
			return
		case env := <-d.queue:
			d.publishWithRetry(ctx, env)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case env := <-d.queue:
			d.publishWithRetry(ctx, env)
		default:
			return
		}
	}
}

func (d *Dispatcher) publishWithRetry(ctx context.Context, env Envelope) {
	var lastErr error
	for attempt := 0; attempt <= d.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(d.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := d.publisher.Publish(ctx, env); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("event_id", env.ID.String()).
				Int("attempt", attempt+1).
				Msg("failed to publish event, retrying")
			continue
		}
		return
	}

	log.Error().
		Err(lastErr).
		Str("event_id", env.ID.String()).
		Str("event_type", string(env.Type)).
		Msg("giving up on event")
}
