package gracecache

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/gracecache/codec"
	"github.com/unkn0wn-root/gracecache/internal/wire"
	pr "github.com/unkn0wn-root/gracecache/provider"
)

type repository[V any] struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[V]
	codecName      string
	log            Logger
	hooks          Hooks
	enabled        bool
	policy         RefreshPolicy
	threshold      int64 // seconds
	extendTTL      time.Duration
	defaultTTL     time.Duration
	format         Format
	marker         []byte
	now            func() time.Time
	computeSetCost SetCostFunc
}

var _ Repository[struct{}] = (*repository[struct{}])(nil)

func newRepository[V any](opts Options[V]) (*repository[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("gracecache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("gracecache: codec is required")
	}
	defs, ok := policyDefaults[opts.Policy]
	if !ok {
		return nil, fmt.Errorf("gracecache: unknown refresh policy %d", opts.Policy)
	}
	if opts.Format != FormatEnvelope && opts.Format != FormatMarker {
		return nil, fmt.Errorf("gracecache: unknown format %d", opts.Format)
	}
	if opts.ExpireThreshold < 0 {
		return nil, fmt.Errorf("gracecache: negative expire threshold %s", opts.ExpireThreshold)
	}

	r := &repository[V]{
		ns:        opts.Namespace,
		provider:  opts.Provider,
		codec:     opts.Codec,
		codecName: c.NameOf(opts.Codec),
		enabled:   !opts.Disabled,
		policy:    opts.Policy,
		format:    opts.Format,
	}

	// defaults
	r.log = opts.Logger
	if r.log == nil {
		r.log = NopLogger{}
	}
	r.hooks = opts.Hooks
	if r.hooks == nil {
		r.hooks = NopHooks{}
	}
	r.threshold = int64(coalesce(opts.ExpireThreshold, defs.threshold) / time.Second)
	r.extendTTL = wholeMinutes(coalesce(opts.ExtendTTL, defs.extend))
	r.defaultTTL = wholeMinutes(coalesce(opts.DefaultTTL, defaultTTL))
	r.marker = []byte(coalesce(opts.Marker, wire.DefaultMarker))

	if r.extendTTL <= 0 {
		return nil, fmt.Errorf("gracecache: extend TTL %s is shorter than one minute", opts.ExtendTTL)
	}
	if r.defaultTTL <= 0 {
		return nil, fmt.Errorf("gracecache: default TTL %s is shorter than one minute", opts.DefaultTTL)
	}

	if opts.Now != nil {
		r.now = opts.Now
	} else {
		r.now = time.Now
	}
	if opts.ComputeSetCost != nil {
		r.computeSetCost = opts.ComputeSetCost
	} else {
		r.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	return r, nil
}

func (r *repository[V]) Enabled() bool { return r.enabled }

func (r *repository[V]) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

func (r *repository[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !r.enabled {
		return zero, false, nil
	}
	k := r.storageKey(key)
	raw, ok, err := r.provider.Get(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		r.hooks.Miss(k)
		return zero, false, nil
	}

	expiresAt, payload, kind := wire.Decode(r.marker, raw)
	now := r.now()
	if !r.expiringSoon(expiresAt, now) {
		v, err := r.codec.Decode(payload)
		if err != nil {
			return zero, false, &CodecError{Op: "decode", Key: key, Codec: r.codecName, Err: err}
		}
		r.hooks.Hit(k)
		return v, true, nil
	}

	// A stale-serving reader needs the value. Legacy blobs are decoded under
	// either policy to learn whether this codec can read them at all.
	var v V
	readable := true
	if r.policy == ServeStaleWhileExtending || kind == wire.KindLegacy {
		if v, err = r.codec.Decode(payload); err != nil {
			if kind != wire.KindLegacy {
				return zero, false, &CodecError{Op: "decode", Key: key, Codec: r.codecName, Err: err}
			}
			readable = false
		}
	}

	extendedTo := expiry(now, r.extendTTL)
	if readable {
		// The stored payload is re-framed as is: the value does not change,
		// only its expiry moves to now+extendTTL.
		err = r.write(ctx, k, payload, r.extendTTL, now, true)
	} else {
		// Foreign bytes the codec cannot read are kept verbatim, so they keep
		// reading as expiring until a Put replaces them.
		err = r.store(ctx, k, raw, r.extendTTL, true)
	}
	if err != nil {
		r.log.Warn("extending expiring entry failed", Fields{"key": key, "error": err.Error()})
		return zero, false, err
	}
	r.hooks.Extended(k, kind.String(), extendedTo)
	r.log.Debug("extended expiring entry", Fields{
		"key":        key,
		"format":     kind.String(),
		"readable":   readable,
		"expiresAt":  expiresAt,
		"extendedTo": extendedTo,
		"policy":     r.policy.String(),
	})

	if readable && r.policy == ServeStaleWhileExtending {
		r.hooks.Hit(k)
		return v, true, nil
	}
	r.hooks.ForcedMiss(k)
	return zero, false, nil
}

func (r *repository[V]) GetOr(ctx context.Context, key string, def Loader[V]) (V, error) {
	return getOr[V](ctx, r, key, def)
}

func (r *repository[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}
	ttl, err := r.normalizeTTL(ttl)
	if err != nil {
		return err
	}
	payload, err := r.codec.Encode(value)
	if err != nil {
		return &CodecError{Op: "encode", Key: key, Codec: r.codecName, Err: err}
	}
	return r.write(ctx, r.storageKey(key), payload, ttl, r.now(), false)
}

func (r *repository[V]) Remember(ctx context.Context, key string, ttl time.Duration, fn Loader[V]) (V, error) {
	return remember[V](ctx, r, key, ttl, fn)
}

// Has reports whether Get would return a value, with the same side effects.
func (r *repository[V]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := r.Get(ctx, key)
	return ok, err
}

func (r *repository[V]) Delete(ctx context.Context, key string) error {
	if !r.enabled {
		return nil
	}
	return r.provider.Del(ctx, r.storageKey(key))
}

// write frames payload with now+ttl and stores it for the same ttl, so the
// store's own expiry and the embedded one agree. ttl is whole minutes.
func (r *repository[V]) write(ctx context.Context, storageKey string, payload []byte, ttl time.Duration, now time.Time, extension bool) error {
	expiresAt := expiry(now, ttl)

	var blob []byte
	switch r.format {
	case FormatMarker:
		blob = wire.EncodeMarker(r.marker, expiresAt, payload)
	default:
		blob = wire.EncodeEnvelope(expiresAt, payload)
	}
	return r.store(ctx, storageKey, blob, ttl, extension)
}

func (r *repository[V]) store(ctx context.Context, storageKey string, blob []byte, ttl time.Duration, extension bool) error {
	ok, err := r.provider.Set(ctx, storageKey, blob, r.computeSetCost(storageKey, blob), ttl)
	if err != nil {
		return err
	}
	if !ok {
		r.hooks.ProviderSetRejected(storageKey, extension)
		r.log.Debug("set rejected by provider (pressure)", Fields{"key": storageKey, "extension": extension})
	}
	return nil
}

func expiry(now time.Time, ttl time.Duration) int64 {
	return now.Unix() + int64(ttl/time.Second)
}

// expiringSoon is inclusive at the boundary; legacy entries (expiresAt 0)
// always qualify. The threshold is added on the clock side so a hostile
// expiresAt near math.MinInt64 cannot wrap around.
func (r *repository[V]) expiringSoon(expiresAt int64, now time.Time) bool {
	return now.Unix()+r.threshold >= expiresAt
}

func (r *repository[V]) normalizeTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == 0 {
		return r.defaultTTL, nil
	}
	ttl = wholeMinutes(ttl)
	if ttl <= 0 {
		return 0, ErrInvalidTTL
	}
	return ttl, nil
}

func (r *repository[V]) storageKey(userKey string) string {
	if r.ns == "" {
		return userKey
	}
	return r.ns + ":" + userKey
}

// wholeMinutes truncates d to whole minutes; negative input yields a non-positive result.
func wholeMinutes(d time.Duration) time.Duration {
	return d.Truncate(time.Minute)
}

func getOr[V any](ctx context.Context, r Repository[V], key string, def Loader[V]) (V, error) {
	var zero V
	v, ok, err := r.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	if def == nil {
		return zero, nil
	}
	return def(ctx)
}

// remember returns the computed value even when storing it fails, together
// with the store error.
func remember[V any](ctx context.Context, r Repository[V], key string, ttl time.Duration, fn Loader[V]) (V, error) {
	var zero V
	if fn == nil {
		return zero, fmt.Errorf("gracecache: remember %q: nil loader", key)
	}
	v, ok, err := r.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		return v, nil
	}
	v, err = fn(ctx)
	if err != nil {
		return zero, err
	}
	return v, r.Put(ctx, key, v, ttl)
}
