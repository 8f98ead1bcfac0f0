package gracecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The repository calls them on hot paths.
type Hooks interface {
	// Hit: a value was returned to the caller (including a stale one under
	// ServeStaleWhileExtending).
	Hit(storageKey string)

	// Miss: the provider had no entry.
	Miss(storageKey string)

	// An entry inside the threshold was re-stored with ExtendTTL.
	// format ∈ {"envelope", "marker", "legacy"} is how the entry was framed when read.
	Extended(storageKey, format string, newExpiresAt int64)

	// The reader was told to recompute after an extension: always under
	// ForceRecomputeOnExpiry, and under either policy for a foreign value the
	// codec cannot parse.
	ForcedMiss(storageKey string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string, extension bool)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                       {}
func (NopHooks) Miss(string)                      {}
func (NopHooks) Extended(string, string, int64)   {}
func (NopHooks) ForcedMiss(string)                {}
func (NopHooks) ProviderSetRejected(string, bool) {}
