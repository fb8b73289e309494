package domain

import (
	"fmt"
	"math"
	"strconv"
)

const (
	percentScale = 100
	maxBarWidth  = 100
)

// FormatPercent renders a [0,1] confidence as a percentage with one decimal.
func FormatPercent(f float64) string {
	if f == 0 {
		f = 0 // drop the sign of negative zero
	}

	return fmt.Sprintf("%.1f%%", f*percentScale)
}

// BarWidth returns the CSS width of a confidence bar, clamped to [0%,100%].
func BarWidth(f float64) string {
	w := f * percentScale

	switch {
	case w < 0 || math.IsNaN(w):
		w = 0
	case w > maxBarWidth:
		w = maxBarWidth
	}

	return strconv.FormatFloat(w, 'f', -1, 64) + "%"
}
