package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const DefaultWriteTimeout = 3 * time.Second

// Queue performs fire-and-forget write-backs for one store on a single
// worker goroutine. Values are full snapshots, so a newer pending value for
// a key replaces the older one. Keys are written in the order they were
// first enqueued. A failed write is logged and dropped.
type Queue struct {
	name    string
	kv      KV
	log     *zap.Logger
	metrics *kit.StorageMetrics
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]string
	order   []string
	busy    bool
	closed  bool
	waiters []chan struct{}

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type QueueOption func(*Queue)

func WithWriteTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithMetrics(m *kit.StorageMetrics) QueueOption {
	return func(q *Queue) { q.metrics = m }
}

// NewQueue starts the worker. Close must be called to stop it.
func NewQueue(name string, kv KV, log *zap.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		name:    name,
		kv:      kv,
		log:     kit.OrNop(log).With(zap.String("store", name)),
		timeout: DefaultWriteTimeout,
		pending: make(map[string]string),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}

	go q.run()
	return q
}

// Enqueue schedules value to be written under key and returns immediately.
func (q *Queue) Enqueue(key, value string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.log.Warn("write dropped: queue closed", zap.String("key", key))
		return
	}
	if _, ok := q.pending[key]; !ok {
		q.order = append(q.order, key)
	}
	q.pending[key] = value
	n := len(q.order)
	q.mu.Unlock()

	q.metrics.SetPending(q.name, n)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every write enqueued before the call has been attempted.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if len(q.order) == 0 && !q.busy {
		q.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the worker. Safe to call twice.
func (q *Queue) Close() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.stop)
	})
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		select {
		case <-q.wake:
			q.drain()
		case <-q.stop:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.order) == 0 {
			q.busy = false
			waiters := q.waiters
			q.waiters = nil
			q.mu.Unlock()

			q.metrics.SetPending(q.name, 0)
			for _, ch := range waiters {
				close(ch)
			}
			return
		}

		key := q.order[0]
		q.order = q.order[1:]
		value := q.pending[key]
		delete(q.pending, key)
		q.busy = true
		n := len(q.order)
		q.mu.Unlock()

		q.metrics.SetPending(q.name, n)
		q.write(key, value)
	}
}

func (q *Queue) write(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	err := q.kv.Set(ctx, key, value)
	q.metrics.ObserveWrite(q.name, key, err)
	if err != nil {
		q.log.Error("storage write failed", zap.String("key", key), zap.Error(err))
	}
}
