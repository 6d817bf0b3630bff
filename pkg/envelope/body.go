package envelope

import (
	"fmt"
	"io"
)

// DefaultMaxBodyBytes is the body ceiling used when none is configured.
const DefaultMaxBodyBytes = 64 * 1024

// ReadBody reads at most max bytes from r and returns them untouched.
// A body longer than max, or one that fails mid-read, yields a
// KindPayloadTooLarge error; nothing is parsed here.
func ReadBody(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBodyBytes
	}
	if r == nil {
		return []byte{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, newError(KindPayloadTooLarge, "Request body too large or unreadable", err)
	}
	if int64(len(raw)) > max {
		return nil, newError(KindPayloadTooLarge, "Request body too large or unreadable",
			fmt.Errorf("body exceeds %d bytes", max))
	}
	return raw, nil
}
