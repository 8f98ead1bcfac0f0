package gracecache

import (
	"errors"
	"fmt"
)

var ErrInvalidTTL = errors.New("gracecache: ttl must be at least one minute")

// CodecError wraps a failure of the configured codec.
type CodecError struct {
	Op    string // "encode" or "decode"
	Key   string
	Codec string
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("gracecache: %s %q with %s codec: %v", e.Op, e.Key, e.Codec, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }
