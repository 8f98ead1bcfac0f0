// Package codec turns caller values into the payload bytes that gracecache
// frames with an expiry and hands to a provider.
package codec

// Codec encodes/decodes values V to []byte for storage.
// Decode must accept every payload Encode produces.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Named is implemented by codecs that report a short identifier for logs.
type Named interface {
	Name() string
}

// NameOf returns c's name, or "custom" for codecs that do not implement Named.
func NameOf(c any) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	return "custom"
}
