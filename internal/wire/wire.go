package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strconv"
)

const version byte = 1

// DefaultMarker separates payload from the expiry timestamp in marker-framed entries.
const DefaultMarker = "?GracefulCacheExpiration="

var (
	ErrCorrupt = errors.New("gracecache: corrupt envelope")
	magic4     = [...]byte{'G', 'R', 'C', 'E'}
)

// Kind reports how a stored blob was framed.
type Kind uint8

const (
	// KindLegacy is a blob with no recognizable expiry; it counts as already expired.
	KindLegacy Kind = iota
	KindEnvelope
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindMarker:
		return "marker"
	default:
		return "legacy"
	}
}

const envelopeHdr = 4 + 1 + 8 + 4

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Envelope: magic(4) | ver(1) | expiresAt(i64 be, unix seconds) | vlen(u32 be) | payload(vlen)
func EncodeEnvelope(expiresAt int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(envelopeHdr + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(expiresAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEnvelope is strict: the announced payload length must consume the
// buffer exactly. The returned payload aliases b.
func DecodeEnvelope(b []byte) (expiresAt int64, payload []byte, err error) {
	if len(b) < envelopeHdr || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}

	off := 5
	expiresAt = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return 0, nil, ErrCorrupt
	}

	return expiresAt, b[off : off+vlen], nil
}

// EncodeMarker appends marker and the decimal expiry to payload.
func EncodeMarker(marker []byte, expiresAt int64, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+len(marker)+20)
	out = append(out, payload...)
	out = append(out, marker...)
	return strconv.AppendInt(out, expiresAt, 10)
}

// DecodeMarker splits b at the first occurrence of marker. ok is false when
// the marker is absent. A timestamp that does not parse yields expiresAt 0.
func DecodeMarker(marker, b []byte) (expiresAt int64, payload []byte, ok bool) {
	if len(marker) == 0 {
		return 0, nil, false
	}
	i := bytes.Index(b, marker)
	if i < 0 {
		return 0, nil, false
	}
	ts, err := strconv.ParseInt(string(b[i+len(marker):]), 10, 64)
	if err != nil {
		ts = 0
	}
	return ts, b[:i], true
}

// Decode recognizes every framing this package writes. Anything else is
// returned whole as KindLegacy with expiresAt 0.
func Decode(marker, b []byte) (expiresAt int64, payload []byte, kind Kind) {
	if hasMagic(b) {
		if exp, p, err := DecodeEnvelope(b); err == nil {
			return exp, p, KindEnvelope
		}
	}
	if exp, p, ok := DecodeMarker(marker, b); ok {
		return exp, p, KindMarker
	}
	return 0, b, KindLegacy
}
