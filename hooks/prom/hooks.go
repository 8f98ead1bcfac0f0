// Package promhooks counts repository events in Prometheus.
//
//	h, err := promhooks.New(prometheus.DefaultRegisterer, promhooks.Options{Namespace: "app"})
//	repo, _ := gracecache.New(gracecache.Options[User]{..., Hooks: h})
//	http.Handle("/metrics", promhooks.Handler(prometheus.DefaultGatherer))
package promhooks

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unkn0wn-root/gracecache"
)

type Options struct {
	Namespace string
	Subsystem string // default "gracecache"

	// ConstLabels are attached to every series, e.g. {"cache": "users"}.
	ConstLabels prometheus.Labels
}

type Hooks struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	forced     prometheus.Counter
	extended   *prometheus.CounterVec // format
	rejections *prometheus.CounterVec // path: put | extend
}

var _ gracecache.Hooks = (*Hooks)(nil)

// New creates the counters and registers them with reg. Registering twice
// against the same registry with the same labels returns the existing
// collectors.
func New(reg prometheus.Registerer, opts Options) (*Hooks, error) {
	sub := opts.Subsystem
	if sub == "" {
		sub = "gracecache"
	}
	co := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: opts.ConstLabels,
		}
	}

	h := &Hooks{
		hits:       prometheus.NewCounter(co("hits_total", "Reads that returned a value.")),
		misses:     prometheus.NewCounter(co("misses_total", "Reads that found nothing in the provider.")),
		forced:     prometheus.NewCounter(co("forced_misses_total", "Reads that extended an entry and reported a miss.")),
		extended:   prometheus.NewCounterVec(co("extensions_total", "Entries re-stored because they were about to expire."), []string{"format"}),
		rejections: prometheus.NewCounterVec(co("provider_set_rejected_total", "Writes the provider dropped under pressure."), []string{"path"}),
	}
	if reg == nil {
		return h, nil
	}

	var err error
	h.hits, err = register(reg, h.hits)
	if err != nil {
		return nil, err
	}
	h.misses, err = register(reg, h.misses)
	if err != nil {
		return nil, err
	}
	h.forced, err = register(reg, h.forced)
	if err != nil {
		return nil, err
	}
	h.extended, err = register(reg, h.extended)
	if err != nil {
		return nil, err
	}
	h.rejections, err = register(reg, h.rejections)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (h *Hooks) Hit(string)        { h.hits.Inc() }
func (h *Hooks) Miss(string)       { h.misses.Inc() }
func (h *Hooks) ForcedMiss(string) { h.forced.Inc() }

func (h *Hooks) Extended(_, format string, _ int64) {
	h.extended.WithLabelValues(format).Inc()
}

func (h *Hooks) ProviderSetRejected(_ string, extension bool) {
	path := "put"
	if extension {
		path = "extend"
	}
	h.rejections.WithLabelValues(path).Inc()
}
