package traced

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type stubProvider struct {
	m      map[string][]byte
	getErr error
}

func (s *stubProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *stubProvider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	s.m[key] = value
	return true, nil
}

func (s *stubProvider) Del(_ context.Context, key string) error { delete(s.m, key); return nil }
func (s *stubProvider) Close(context.Context) error             { return nil }

func newTestConfig(t *testing.T) (*Config, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return &Config{TracerProvider: tp, System: "stub", RecordKeys: true}, rec
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestNilConfigIsPassthrough(t *testing.T) {
	sp := &stubProvider{m: map[string][]byte{}}
	if got := Wrap(sp, nil); got != sp {
		t.Fatalf("Wrap(nil config) should return the provider unchanged")
	}
}

func TestSpansPerOperation(t *testing.T) {
	cfg, rec := newTestConfig(t)
	p := Wrap(&stubProvider{m: map[string][]byte{}}, cfg)
	ctx := t.Context()

	if _, err := p.Set(ctx, "k", []byte("value"), 1, 5*time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := p.Get(ctx, "k"); err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatal(err)
	}

	spans := rec.Ended()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	wantNames := []string{"gracecache.provider.set", "gracecache.provider.get", "gracecache.provider.del"}
	for i, s := range spans {
		if s.Name() != wantNames[i] {
			t.Fatalf("span %d name = %q, want %q", i, s.Name(), wantNames[i])
		}
		if s.SpanKind() != trace.SpanKindClient {
			t.Fatalf("span %d kind = %v, want client", i, s.SpanKind())
		}
	}

	set := attrMap(spans[0].Attributes())
	if set["cache.ttl_seconds"].AsInt64() != 300 {
		t.Fatalf("ttl attribute = %v", set["cache.ttl_seconds"])
	}
	if set["db.system"].AsString() != "stub" || set["cache.key"].AsString() != "k" {
		t.Fatalf("unexpected set attributes: %v", set)
	}
	get := attrMap(spans[1].Attributes())
	if !get["cache.hit"].AsBool() {
		t.Fatalf("expected cache.hit=true on get span")
	}
}

func TestErrorRecorded(t *testing.T) {
	cfg, rec := newTestConfig(t)
	cfg.RecordKeys = false
	boom := errors.New("store down")
	p := Wrap(&stubProvider{m: map[string][]byte{}, getErr: boom}, cfg)

	if _, _, err := p.Get(t.Context(), "k"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("status = %v, want Error", spans[0].Status().Code)
	}
	if _, ok := attrMap(spans[0].Attributes())["cache.key"]; ok {
		t.Fatalf("key recorded although RecordKeys=false")
	}
}
