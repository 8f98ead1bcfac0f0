package sloghooks

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("decode %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestExtendedRedactsKey(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{})

	h.Extended("user:42", "legacy", 1_700_000_060)
	recs := records(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r["msg"] != "gracecache.extended" || r["format"] != "legacy" {
		t.Fatalf("unexpected record %v", r)
	}
	if r["key"] == "user:42" || len(r["key"].(string)) != 16 {
		t.Fatalf("key not redacted: %v", r["key"])
	}
}

func TestCustomRedactor(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{Redact: func(string) string { return "***" }})

	h.ProviderSetRejected("k", true)
	r := records(t, &buf)[0]
	if r["key"] != "***" || r["extension"] != true || r["level"] != "WARN" {
		t.Fatalf("unexpected record %v", r)
	}
}

func TestSamplingEvery(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{Every: 5})

	for i := 0; i < 10; i++ {
		h.Extended("k", "envelope", 0)
	}
	// calls 1 and 6
	if n := len(records(t, &buf)); n != 2 {
		t.Fatalf("logged %d of 10 events, want 2", n)
	}
}

func TestHitsOnlyWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	New(newLogger(&buf), Options{}).Hit("k")
	if buf.Len() != 0 {
		t.Fatalf("hit logged without LogHits")
	}
	New(newLogger(&buf), Options{LogHits: true}).Miss("k")
	if recs := records(t, &buf); len(recs) != 1 || recs[0]["msg"] != "gracecache.miss" {
		t.Fatalf("unexpected records %v", recs)
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.Extended("k", "legacy", 0)
	h.ForcedMiss("k")
	h.ProviderSetRejected("k", false)
}
