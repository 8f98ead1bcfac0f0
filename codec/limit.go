package codec

import "fmt"

// LimitCodec caps the payload size accepted by Decode. Encode is forwarded
// unchanged. MaxDecode <= 0 disables the check.
//
// Useful when the backing store is shared and a foreign writer may have put
// something large under a key this cache reads.
type LimitCodec[V any] struct {
	Inner     Codec[V]
	MaxDecode int // bytes
}

func (c LimitCodec[V]) Name() string { return "limit(" + NameOf(c.Inner) + ")" }

func (c LimitCodec[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c LimitCodec[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
