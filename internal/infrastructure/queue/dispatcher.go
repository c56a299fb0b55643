package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ansysan/task-management-system/internal/core/domain"
	"github.com/ansysan/task-management-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
)

// Dispatcher routes auth audit events to a fixed set of workers using
// consistent hashing on the subject, so events of one subject are stored in
// the order they were recorded.
type Dispatcher struct {
	workers []chan domain.AuthEvent
	repo    ports.AuthEventRepository
	log     zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped func()
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithDropHook registers a callback invoked for every event dropped because
// its worker queue was full.
func WithDropHook(fn func()) Option {
	return func(d *Dispatcher) {
		d.dropped = fn
	}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuthEventRepository, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
		dropped: func() {},
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Close has been
// called and their queue is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(context.WithoutCancel(ctx), i, ch)
	}
}

// Record enqueues an event without blocking. When the subject's worker queue
// is full the event is dropped and logged.
func (d *Dispatcher) Record(event domain.AuthEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.workers[d.shardIndex(event.Subject)] <- event:
	default:
		d.dropped()
		d.log.Warn().Str("kind", string(event.Kind)).Msg("audit queue full, event dropped")
	}
}

// Close stops accepting events and waits for queued ones to be stored or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a subject deterministically to a worker index.
func (d *Dispatcher) shardIndex(subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	for event := range ch {
		insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
		if err := d.repo.Insert(insertCtx, event); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(event.Kind)).
				Int("worker_id", id).
				Msg("audit event insert failed")
		}
		cancel()
	}
}
