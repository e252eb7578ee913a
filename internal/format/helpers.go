package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Score formats a score with exactly precision decimals.
func Score(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// Signed formats a delta with an explicit sign.
func Signed(v float64, precision int) string {
	if v > 0 {
		return "+" + Score(v, precision)
	}
	return Score(v, precision)
}

// Duration formats a duration as "1.2s" or "350ms".
func Duration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}

// Bar draws a fixed-width bar for a 0-100 score.
func Bar(score float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(score / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
