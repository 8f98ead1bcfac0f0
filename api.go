package gracecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/gracecache/codec"
	pr "github.com/unkn0wn-root/gracecache/provider"
)

type SetCostFunc func(key string, raw []byte) int64

// Loader computes a value when the cache cannot serve one.
type Loader[V any] func(ctx context.Context) (V, error)

// Value returns a Loader that yields v.
func Value[V any](v V) Loader[V] {
	return func(context.Context) (V, error) { return v, nil }
}

// Repository is the read/write surface shared by the graceful layer and the
// plain (undecorated) one, so callers can swap them without code changes.
type Repository[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get reports ok=false on a miss. With ForceRecomputeOnExpiry an entry
	// inside the expiry threshold is also reported as a miss after its
	// lifetime was extended for other readers. A foreign value the codec
	// cannot parse is a miss under both policies.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// GetOr is Get that falls back to def. def runs at most once and only
	// when Get reports a miss. A nil def yields the zero value.
	GetOr(ctx context.Context, key string, def Loader[V]) (V, error)

	// Put stores value for ttl, truncated to whole minutes. ttl == 0 uses
	// Options.DefaultTTL.
	Put(ctx context.Context, key string, value V, ttl time.Duration) error

	// Remember returns the cached value or computes it with fn and Puts it.
	// Concurrent callers are not coordinated; each miss runs fn.
	Remember(ctx context.Context, key string, ttl time.Duration, fn Loader[V]) (V, error)

	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RefreshPolicy decides what the reader that triggers an extension gets back.
type RefreshPolicy uint8

const (
	// ForceRecomputeOnExpiry extends the stored entry and reports a miss to
	// the reader that noticed, so exactly that reader recomputes while
	// everyone else keeps hitting the extended entry.
	ForceRecomputeOnExpiry RefreshPolicy = iota

	// ServeStaleWhileExtending extends the stored entry and still returns the
	// value. Nobody is told to recompute; the entry simply lives on for
	// ExtendTTL past each read inside the threshold.
	ServeStaleWhileExtending
)

func (p RefreshPolicy) String() string {
	switch p {
	case ForceRecomputeOnExpiry:
		return "force_recompute"
	case ServeStaleWhileExtending:
		return "serve_stale"
	default:
		return "unknown"
	}
}

// Format selects how entries are framed on write. Reads accept both.
type Format uint8

const (
	// FormatEnvelope is a length-prefixed binary header carrying the expiry.
	FormatEnvelope Format = iota
	// FormatMarker appends Marker and the decimal unix expiry to the payload,
	// for stores shared with readers that only understand that layout.
	FormatMarker
)

// Options tune the graceful repository. Provider and Codec are required.
// The struct is copied by New; later changes have no effect.
type Options[V any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[V]

	Namespace       string        // optional key prefix; "" stores under the caller's key
	Policy          RefreshPolicy // default ForceRecomputeOnExpiry
	ExpireThreshold time.Duration // 0 => 30s (force recompute) or 60s (serve stale)
	ExtendTTL       time.Duration // whole minutes; 0 => 5m (force recompute) or 1m (serve stale)
	DefaultTTL      time.Duration // Put with ttl == 0; 0 => 10m
	Format          Format        // default FormatEnvelope
	Marker          string        // "" => wire.DefaultMarker
	Logger          Logger        // nil => NopLogger
	Hooks           Hooks         // nil => NopHooks
	Now             func() time.Time
	ComputeSetCost  SetCostFunc // default 1
	Disabled        bool        // Get always misses, Put is a no-op
}

func New[V any](opts Options[V]) (Repository[V], error) {
	return newRepository[V](opts)
}
