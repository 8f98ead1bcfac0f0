// Package traced wraps a provider so every store round trip becomes an
// OpenTelemetry span. Extensions written during a read show up as a Set span
// nested under the caller's span, which makes stampede behavior visible.
package traced

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pr "github.com/unkn0wn-root/gracecache/provider"
)

const instrumentationName = "github.com/unkn0wn-root/gracecache/provider/traced"

// Config holds the tracing setup. A nil Config makes Wrap a passthrough.
type Config struct {
	// TracerProvider supplies the Tracer. When nil the global
	// otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider

	// System is recorded as db.system (e.g. "redis", "ristretto").
	System string

	// RecordKeys adds the storage key as an attribute. Off by default since
	// keys often carry user identifiers.
	RecordKeys bool
}

type Provider struct {
	next   pr.Provider
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	keys   bool
}

var _ pr.Provider = (*Provider)(nil)

func Wrap(next pr.Provider, cfg *Config) pr.Provider {
	if cfg == nil {
		return next
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	p := &Provider{
		next:   next,
		tracer: tp.Tracer(instrumentationName),
		keys:   cfg.RecordKeys,
	}
	if cfg.System != "" {
		p.attrs = append(p.attrs, attribute.String("db.system", cfg.System))
	}
	return p
}

func (p *Provider) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	ctx, span := p.tracer.Start(ctx, "gracecache.provider."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(p.attrs...)
	span.SetAttributes(attribute.String("db.operation", op))
	if p.keys {
		span.SetAttributes(attribute.String("cache.key", key))
	}
	return ctx, span
}

func recordErr(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := p.start(ctx, "get", key)
	defer span.End()

	b, ok, err := p.next.Get(ctx, key)
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	recordErr(span, err)
	return b, ok, err
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	ctx, span := p.start(ctx, "set", key)
	defer span.End()

	span.SetAttributes(
		attribute.Int("cache.value_size", len(value)),
		attribute.Int64("cache.ttl_seconds", int64(ttl/time.Second)),
	)
	ok, err := p.next.Set(ctx, key, value, cost, ttl)
	span.SetAttributes(attribute.Bool("cache.accepted", ok))
	recordErr(span, err)
	return ok, err
}

func (p *Provider) Del(ctx context.Context, key string) error {
	ctx, span := p.start(ctx, "del", key)
	defer span.End()

	err := p.next.Del(ctx, key)
	recordErr(span, err)
	return err
}

// Close is not traced.
func (p *Provider) Close(ctx context.Context) error {
	return p.next.Close(ctx)
}
