package listify

import (
	"fmt"
	"strings"
	"time"
)

// Countdown formats the time remaining until fireAt as "2d 3h 5m", "3h 0m"
// or "12m". Once the remainder is zero or negative it returns "Expired" and
// true.
func Countdown(fireAt, now time.Time) (string, bool) {
	diff := fireAt.Sub(now)
	if diff <= 0 {
		return "Expired", true
	}

	days := int(diff / (24 * time.Hour))
	hours := int(diff % (24 * time.Hour) / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 || days > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	fmt.Fprintf(&b, "%dm", minutes)
	return b.String(), false
}
