package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOROptions configures NewCBOR. The zero value gives preferred (unsorted)
// encoding, RFC3339Nano timestamps and a lenient decoder.
type CBOROptions struct {
	// Deterministic selects RFC 8949 Core Deterministic encoding, so equal
	// values always produce equal payloads.
	Deterministic bool

	// UnixTime encodes time.Time as integer seconds instead of RFC3339Nano.
	UnixTime bool

	// Strict rejects payloads with duplicate map keys. Worth enabling when
	// other writers share the store.
	Strict bool

	MaxNestedLevels int // 0 => library default (32)
}

// CBOR serializes values using fxamacker/cbor. Construct with NewCBOR or MustCBOR.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

func NewCBOR[V any](opts CBOROptions) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if opts.Deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano
	if opts.UnixTime {
		eo.Time = cbor.TimeUnix
	}
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}

	do := cbor.DecOptions{MaxNestedLevels: opts.MaxNestedLevels}
	if opts.Strict {
		do.DupMapKey = cbor.DupMapKeyEnforcedAPF
	}
	dm, err := do.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR panics where NewCBOR would fail. For package-level vars and tests.
func MustCBOR[V any](opts CBOROptions) CBOR[V] {
	c, err := NewCBOR[V](opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (CBOR[V]) Name() string { return "cbor" }

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
