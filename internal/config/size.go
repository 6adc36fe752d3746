package config

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ParseSize parses "32768", "32KiB", "4 GiB" or "64MB". IEC suffixes
// (KiB, MiB, GiB) are binary; SI suffixes (K, KB, M, MB, G, GB) are decimal.
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("size %q must be positive", s)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return int64(n), nil
}
