package promhooks

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, Options{Namespace: "app"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h.Hit("a")
	h.Hit("b")
	h.Miss("c")
	h.ForcedMiss("d")
	h.Extended("d", "envelope", 0)
	h.Extended("e", "legacy", 0)
	h.Extended("f", "legacy", 0)
	h.ProviderSetRejected("g", true)
	h.ProviderSetRejected("h", false)
	h.ProviderSetRejected("i", false)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"hits", h.hits, 2},
		{"misses", h.misses, 1},
		{"forced", h.forced, 1},
		{"extended envelope", h.extended.WithLabelValues("envelope"), 1},
		{"extended legacy", h.extended.WithLabelValues("legacy"), 2},
		{"rejected extend", h.rejections.WithLabelValues("extend"), 1},
		{"rejected put", h.rejections.WithLabelValues("put"), 2},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRegisterTwiceSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg, Options{})
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	b, err := New(reg, Options{})
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	a.Hit("k")
	b.Hit("k")
	if got := testutil.ToFloat64(a.hits); got != 2 {
		t.Fatalf("hits = %v, want 2 across both instances", got)
	}
}

func TestHandlerExposesSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := New(reg, Options{ConstLabels: prometheus.Labels{"cache": "users"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.Extended("k", "marker", 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `gracecache_extensions_total{cache="users",format="marker"} 1`) {
		t.Fatalf("series missing from output:\n%s", body)
	}
}
