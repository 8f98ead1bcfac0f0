// Package asynchook moves hook delivery off the read path. Events are queued
// to a fixed pool of workers and dropped when the queue is full, so a slow
// metrics or logging backend can never stall a cache read.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{Interval: time.Second})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	repo, _ := gracecache.New(gracecache.Options[User]{
//	    Provider: provider,
//	    Codec:    codec.JSON[User]{},
//	    Hooks:    hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/gracecache"
)

type Hooks struct {
	inner   gracecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards q against send-after-close
	closed  bool
	dropped atomic.Uint64
}

var _ gracecache.Hooks = (*Hooks)(nil)

func New(inner gracecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events fired after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)        { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string)       { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) ForcedMiss(k string) { h.try(func() { h.inner.ForcedMiss(k) }) }
func (h *Hooks) Extended(k, format string, exp int64) {
	h.try(func() { h.inner.Extended(k, format, exp) })
}
func (h *Hooks) ProviderSetRejected(k string, ext bool) {
	h.try(func() { h.inner.ProviderSetRejected(k, ext) })
}
