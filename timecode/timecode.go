// Package timecode converts between HH:MM:SS-style timestamps and integer
// seconds for segment boundaries.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse accepts "H:MM:SS", "MM:SS", or a bare seconds string and returns the
// total seconds. Malformed input degrades to 0 rather than failing; callers
// must range-check the result themselves.
func Parse(text string) int {
	parts := strings.Split(strings.TrimSpace(text), ":")

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}

	if len(parts) > 3 {
		return 0
	}
	return total
}

// Format renders seconds as zero-padded "H:MM:SS". Parse(Format(s)) == s for
// all non-negative s.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
