package codec

import "google.golang.org/protobuf/proto"

// ProtobufOptions tune marshalling. The zero value marshals deterministically,
// so an unchanged message re-Put under the same key produces the same bytes.
type ProtobufOptions struct {
	// NonDeterministic lets map fields encode in iteration order.
	NonDeterministic bool

	// DiscardUnknown drops fields this binary does not know, instead of
	// carrying them through a Get/Put cycle written by a newer schema.
	DiscardUnknown bool
}

// Protobuf stores proto messages in their binary wire form.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.User { return &pb.User{} }
	mo  proto.MarshalOptions
	uo  proto.UnmarshalOptions
}

// NewProtobuf needs a constructor because Decode must allocate a concrete message.
func NewProtobuf[T proto.Message](ctor func() T, opts ProtobufOptions) Protobuf[T] {
	return Protobuf[T]{
		new: ctor,
		mo:  proto.MarshalOptions{Deterministic: !opts.NonDeterministic},
		uo:  proto.UnmarshalOptions{DiscardUnknown: opts.DiscardUnknown},
	}
}

func (Protobuf[T]) Name() string { return "protobuf" }

func (c Protobuf[T]) Encode(v T) ([]byte, error) { return c.mo.Marshal(v) }

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := c.uo.Unmarshal(b, m)
	return m, err
}
