package provider

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/lagoonledger/lagoon/internal/shared/types"
)

// ClampLimit resolves an optional caller limit against configured bounds.
func ClampLimit(limit *int, def, max int) int {
	if limit == nil || *limit <= 0 {
		return def
	}
	if *limit > max {
		return max
	}
	return *limit
}

// EncodeCursor packs a log sequence number into an opaque cursor.
func EncodeCursor(seq uint64) types.Cursor {
	raw := strconv.FormatUint(seq, 10)
	return types.Cursor(base64.RawURLEncoding.EncodeToString([]byte(raw)))
}

// DecodeCursor unpacks a cursor produced by EncodeCursor.
func DecodeCursor(c types.Cursor) (uint64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return 0, fmt.Errorf("malformed cursor %q: %w", c, err)
	}
	seq, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor %q: %w", c, err)
	}
	return seq, nil
}
