// Package queue fans session audit events out to a fixed pool of workers.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vytalle/storefront/internal/core/domain"
	"github.com/vytalle/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher implements ports.SessionAuditor. Events are sharded by
// email, so one account's events are written in the order they happened.
type AuditDispatcher struct {
	workers []chan domain.SessionEvent
	repo    ports.SessionEventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers shards. If
// numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.SessionEventRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches the workers. They stop when ctx is cancelled; Wait blocks
// until they have.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *AuditDispatcher) Wait() { d.wg.Wait() }

// Record enqueues event without blocking. A full shard drops the event.
func (d *AuditDispatcher) Record(event domain.SessionEvent) {
	select {
	case d.workers[d.shardIndex(event.Email)] <- event:
	default:
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("email", event.Email).
			Msg("audit queue full, event dropped")
	}
}

func (d *AuditDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			// The request that produced the event may already be gone.
			if err := d.repo.InsertSessionEvent(context.WithoutCancel(ctx), &event); err != nil {
				d.log.Error().Err(err).
					Str("kind", string(event.Kind)).
					Int("worker_id", id).
					Msg("session event not persisted")
			}
		}
	}
}
