package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/gracecache"
)

type Options struct {
	// Sampling for extension and forced-miss events, which fire on every read
	// inside the expiry window. Every=N logs every Nth event, Interval logs at
	// most once per interval; either may satisfy. Both zero = log all.
	Every    int
	Interval time.Duration

	// LogHits logs hits and misses at debug level. Off by default.
	LogHits bool

	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	extendSampler *rate.Sometimes
	forcedSampler *rate.Sometimes
}

var _ gracecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	h := &Hooks{l: l, opts: opts}
	if opts.Every > 0 || opts.Interval > 0 {
		h.extendSampler = &rate.Sometimes{Every: opts.Every, Interval: opts.Interval}
		h.forcedSampler = &rate.Sometimes{Every: opts.Every, Interval: opts.Interval}
	}
	return h
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(s *rate.Sometimes, f func()) {
	if s == nil {
		f()
		return
	}
	s.Do(f)
}

func (h *Hooks) Hit(storageKey string) {
	if h.l == nil || !h.opts.LogHits {
		return
	}
	h.l.Debug("gracecache.hit", "key", h.redact(storageKey))
}

func (h *Hooks) Miss(storageKey string) {
	if h.l == nil || !h.opts.LogHits {
		return
	}
	h.l.Debug("gracecache.miss", "key", h.redact(storageKey))
}

func (h *Hooks) Extended(storageKey, format string, newExpiresAt int64) {
	if h.l == nil {
		return
	}
	sample(h.extendSampler, func() {
		h.l.Info("gracecache.extended",
			"key", h.redact(storageKey),
			"format", format,
			"expires_at", time.Unix(newExpiresAt, 0).UTC())
	})
}

func (h *Hooks) ForcedMiss(storageKey string) {
	if h.l == nil {
		return
	}
	sample(h.forcedSampler, func() {
		h.l.Debug("gracecache.forced_miss", "key", h.redact(storageKey))
	})
}

func (h *Hooks) ProviderSetRejected(storageKey string, extension bool) {
	if h.l == nil {
		return
	}
	h.l.Warn("gracecache.provider_set_rejected",
		"key", h.redact(storageKey),
		"extension", extension)
}
