package filter

import (
	"fmt"
	"time"
)

// Humanize renders a non-negative duration as a short, rounded phrase:
// ceil up to minutes if any seconds remain, then, for an hour or more,
// ceil up to hours if any minutes remain. Only called for Explicit blocks; Implicit blocks use the
// literal word "later" instead.
func Humanize(d time.Duration) string {
	totalSeconds := int64(d / time.Second)
	m := totalSeconds / 60
	s := totalSeconds % 60
	if s != 0 {
		m++
	}
	h := m / 60
	mm := m % 60
	if mm != 0 && h != 0 {
		h++
	}

	switch {
	case h > 1:
		return fmt.Sprintf("in %d hours", h)
	case h == 1:
		return "in an hour"
	case mm > 1:
		return fmt.Sprintf("in %d minutes", mm)
	case mm == 1:
		return "in a minute"
	default:
		return "now"
	}
}

// DescribeExplicit renders the user-facing duration word for a block: a
// humanized time when explicit, or "later" when implicit.
func DescribeExplicit(d time.Duration, vis Visibility) string {
	if vis == Implicit {
		return "later"
	}
	return Humanize(d)
}
