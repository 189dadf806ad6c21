package sketchdex

import (
	"fmt"
	"math"
)

// FormatBP pretty-prints a base pair count, e.g. "1.2 Mbp".
func FormatBP(bp float64) string {
	switch {
	case bp < 500:
		return fmt.Sprintf("%.0f bp ", bp)
	case bp <= 500e3:
		return fmt.Sprintf("%.1f kbp", round1(bp/1e3))
	case bp < 500e6:
		return fmt.Sprintf("%.1f Mbp", round1(bp/1e6))
	case bp < 500e9:
		return fmt.Sprintf("%.1f Gbp", round1(bp/1e9))
	default:
		return "???"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
