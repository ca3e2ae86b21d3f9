// Package format renders prices, expiry countdowns and relative times the
// way listing cards display them. Every function takes "now" explicitly.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Expired is returned by TimeRemaining once a listing has expired.
const Expired = "Expired"

// Price renders cents as dollars, or "Free" for zero.
func Price(cents int64) string {
	if cents == 0 {
		return "Free"
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// TimeRemaining returns the largest whole unit left before expiresAt
// ("2d", "3h", "45m"), truncating rather than rounding. The bool is false
// when no expiry is set.
func TimeRemaining(expiresAt *time.Time, now time.Time) (string, bool) {
	if expiresAt == nil {
		return "", false
	}

	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return Expired, true
	}

	minutes := int64(diff / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd", days), true
	case hours > 0:
		return fmt.Sprintf("%dh", hours), true
	default:
		return fmt.Sprintf("%dm", minutes), true
	}
}

// IsExpired reports whether expiresAt is set and not after now.
func IsExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt != nil && !expiresAt.After(now)
}

// RelativeTime renders how long ago t was, e.g. "3 hours ago".
func RelativeTime(t, now time.Time) string {
	minutes := int64(now.Sub(t) / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return plural(days, "day") + " ago"
	case hours > 0:
		return plural(hours, "hour") + " ago"
	case minutes > 0:
		return plural(minutes, "minute") + " ago"
	default:
		return "Just now"
	}
}

// Truncate shortens s to limit runes and appends "..." when it was cut.
// A negative limit counts as zero.
func Truncate(s string, limit int) string {
	limit = max(limit, 0)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "..."
}

// CapitalizeFirst upper-cases the first rune and lower-cases the rest.
func CapitalizeFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
