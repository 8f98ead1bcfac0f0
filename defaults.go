package gracecache

import "time"

const defaultTTL = 10 * time.Minute

// threshold/extension pair per policy, used when the option is zero
var policyDefaults = map[RefreshPolicy]struct {
	threshold time.Duration
	extend    time.Duration
}{
	ForceRecomputeOnExpiry:   {threshold: 30 * time.Second, extend: 5 * time.Minute},
	ServeStaleWhileExtending: {threshold: 60 * time.Second, extend: 1 * time.Minute},
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
