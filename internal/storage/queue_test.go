package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

func flush(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := q.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestQueue_WritesLatestValue(t *testing.T) {
	kv := NewMemKV()
	q := NewQueue("shop", kv, zap.NewNop())
	defer q.Close()

	for _, v := range []string{"1", "2", "3"} {
		q.Enqueue(KeyCart, v)
	}
	q.Enqueue(KeyWishlist, "w")
	flush(t, q)

	v, _, _ := kv.Get(context.Background(), KeyCart)
	if v != "3" {
		t.Fatalf("cart=%q want=3", v)
	}
	v, _, _ = kv.Get(context.Background(), KeyWishlist)
	if v != "w" {
		t.Fatalf("wishlist=%q", v)
	}
}

func TestQueue_FlushOnIdleQueue(t *testing.T) {
	q := NewQueue("idle", NewMemKV(), nil)
	defer q.Close()
	flush(t, q)
}

func TestQueue_FailedWriteIsDroppedAndNextRetries(t *testing.T) {
	kv := NewMemKV()
	reg := prometheus.NewRegistry()
	m := kit.NewStorageMetrics(reg)

	q := NewQueue("shop", kv, zap.NewNop(), WithMetrics(m))
	defer q.Close()

	kv.FailSets(true)
	q.Enqueue(KeyCart, "lost")
	flush(t, q)

	if _, found, _ := kv.Get(context.Background(), KeyCart); found {
		t.Fatalf("failed write must not be stored")
	}
	if got := testutil.ToFloat64(m.Writes.WithLabelValues("shop", KeyCart, "error")); got != 1 {
		t.Fatalf("error writes=%v", got)
	}

	kv.FailSets(false)
	q.Enqueue(KeyCart, "current")
	flush(t, q)

	v, _, _ := kv.Get(context.Background(), KeyCart)
	if v != "current" {
		t.Fatalf("cart=%q", v)
	}
	if got := testutil.ToFloat64(m.Writes.WithLabelValues("shop", KeyCart, "ok")); got != 1 {
		t.Fatalf("ok writes=%v", got)
	}
}

func TestQueue_CloseDrainsAndDropsLater(t *testing.T) {
	kv := NewMemKV()
	q := NewQueue("theme", kv, zap.NewNop())

	q.Enqueue(KeyThemeMode, "dark")
	q.Close()

	v, found, _ := kv.Get(context.Background(), KeyThemeMode)
	if !found || v != "dark" {
		t.Fatalf("pending write lost on close: v=%q found=%v", v, found)
	}

	q.Enqueue(KeyThemeMode, "light")
	q.Close()

	v, _, _ = kv.Get(context.Background(), KeyThemeMode)
	if v != "dark" {
		t.Fatalf("write after close applied: %q", v)
	}
}

type blockingKV struct {
	*MemKV
	release chan struct{}
	once    sync.Once
}

func (b *blockingKV) Set(ctx context.Context, key, value string) error {
	<-b.release
	return b.MemKV.Set(ctx, key, value)
}

func TestQueue_FlushHonoursContext(t *testing.T) {
	kv := &blockingKV{MemKV: NewMemKV(), release: make(chan struct{})}
	q := NewQueue("slow", kv, zap.NewNop())
	defer q.Close()
	defer kv.once.Do(func() { close(kv.release) })

	q.Enqueue(KeyCart, "x")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Flush(ctx); err == nil {
		t.Fatalf("expected context error while write is blocked")
	}
}
