// Package gracecache decorates a key/value store so that entries about to
// expire are extended by the first reader that notices, instead of dying and
// sending every concurrent reader to the origin at once.
//
// Components:
//   - Provider: byte store with TTL (e.g. Ristretto, BigCache, Redis).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Repository[V]: frames every payload with its absolute expiry and, on read,
//     re-stores entries within ExpireThreshold of that expiry for ExtendTTL.
//
// Entries are stored under the caller's key (prefixed with Namespace when set):
//
//	GRCE | ver | expiresAt(i64) | len(u32) | payload      envelope (default)
//	payload ?GracefulCacheExpiration= <unix seconds>       marker (FormatMarker)
//
// Anything else found under a key is a foreign value: it is decoded as a bare
// payload and treated as already expired, so the first read re-frames it. A
// foreign value the codec cannot parse is re-stored untouched and reads as a
// miss until a Put replaces it.
//
// Policies:
//
//	ForceRecomputeOnExpiry    extend, then report a miss to this reader only
//	ServeStaleWhileExtending  extend, and still return the value
//
// There is no locking or single-flight. Concurrent readers inside the threshold
// each write the same extension; the last write wins with an identical value.
//
//	repo, _ := gracecache.New(gracecache.Options[User]{Provider: p, Codec: codec.JSON[User]{}})
//	u, err := repo.Remember(ctx, "user:1", 10*time.Minute, loadUser)
package gracecache
