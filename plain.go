package gracecache

import (
	"context"
	"fmt"
	"time"

	c "github.com/unkn0wn-root/gracecache/codec"
	pr "github.com/unkn0wn-root/gracecache/provider"
)

// plain stores bare codec payloads and relies only on the provider's TTL.
type plain[V any] struct {
	ns         string
	provider   pr.Provider
	codec      c.Codec[V]
	codecName  string
	enabled    bool
	defaultTTL time.Duration
	cost       SetCostFunc
	hooks      Hooks
}

var _ Repository[struct{}] = (*plain[struct{}])(nil)

// NewPlain returns a Repository without graceful expiry: no framing, no
// extension. Only Provider, Codec, Namespace, DefaultTTL, Hooks,
// ComputeSetCost and Disabled are used.
func NewPlain[V any](opts Options[V]) (Repository[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("gracecache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("gracecache: codec is required")
	}
	p := &plain[V]{
		ns:         opts.Namespace,
		provider:   opts.Provider,
		codec:      opts.Codec,
		codecName:  c.NameOf(opts.Codec),
		enabled:    !opts.Disabled,
		defaultTTL: wholeMinutes(coalesce(opts.DefaultTTL, defaultTTL)),
		cost:       opts.ComputeSetCost,
		hooks:      opts.Hooks,
	}
	if p.hooks == nil {
		p.hooks = NopHooks{}
	}
	if p.defaultTTL <= 0 {
		return nil, fmt.Errorf("gracecache: default TTL %s is shorter than one minute", opts.DefaultTTL)
	}
	if p.cost == nil {
		p.cost = func(string, []byte) int64 { return 1 }
	}
	return p, nil
}

func (p *plain[V]) Enabled() bool                   { return p.enabled }
func (p *plain[V]) Close(ctx context.Context) error { return p.provider.Close(ctx) }

func (p *plain[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !p.enabled {
		return zero, false, nil
	}
	k := p.storageKey(key)
	raw, ok, err := p.provider.Get(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		p.hooks.Miss(k)
		return zero, false, nil
	}
	v, err := p.codec.Decode(raw)
	if err != nil {
		return zero, false, &CodecError{Op: "decode", Key: key, Codec: p.codecName, Err: err}
	}
	p.hooks.Hit(k)
	return v, true, nil
}

func (p *plain[V]) GetOr(ctx context.Context, key string, def Loader[V]) (V, error) {
	return getOr[V](ctx, p, key, def)
}

func (p *plain[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !p.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = p.defaultTTL
	}
	if ttl = wholeMinutes(ttl); ttl <= 0 {
		return ErrInvalidTTL
	}
	raw, err := p.codec.Encode(value)
	if err != nil {
		return &CodecError{Op: "encode", Key: key, Codec: p.codecName, Err: err}
	}
	k := p.storageKey(key)
	ok, err := p.provider.Set(ctx, k, raw, p.cost(k, raw), ttl)
	if err != nil {
		return err
	}
	if !ok {
		p.hooks.ProviderSetRejected(k, false)
	}
	return nil
}

func (p *plain[V]) Remember(ctx context.Context, key string, ttl time.Duration, fn Loader[V]) (V, error) {
	return remember[V](ctx, p, key, ttl, fn)
}

func (p *plain[V]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := p.Get(ctx, key)
	return ok, err
}

func (p *plain[V]) Delete(ctx context.Context, key string) error {
	if !p.enabled {
		return nil
	}
	return p.provider.Del(ctx, p.storageKey(key))
}

func (p *plain[V]) storageKey(userKey string) string {
	if p.ns == "" {
		return userKey
	}
	return p.ns + ":" + userKey
}
