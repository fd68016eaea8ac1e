package forex_scanner

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPair = errors.New("invalid currency pair")

// ParsePair splits a "BASE/QUOTE" string into its two ISO codes,
// trimmed and upper-cased. Both sides must be non-empty.
func ParsePair(raw string) (string, string, error) {
	idx := strings.Index(raw, "/")

	if idx < 0 {
		return "", "", fmt.Errorf("%w '%s': expected format like EUR/USD", ErrInvalidPair, raw)
	}

	base := strings.ToUpper(strings.TrimSpace(raw[:idx]))
	quote := strings.ToUpper(strings.TrimSpace(raw[idx+1:]))

	if base == "" || quote == "" {
		return "", "", fmt.Errorf("%w '%s': expected format like EUR/USD", ErrInvalidPair, raw)
	}

	return base, quote, nil
}
