package score

import "math"

// Fixed-point units. All scoring arithmetic is integer so a report is
// bit-identical across runs and platforms.
const (
	checkUnit  = 10000 // check values are quantized to 1/10000 point
	weightUnit = 100   // weights are quantized to 1/100 point
	maxPrec    = 4
)

// ticks converts points to fixed-point at the given precision scale.
func ticks(points float64, scale int64) int64 {
	return int64(math.Round(points * float64(scale)))
}

// points converts fixed-point back to a float for output.
func points(t int64, scale int64) float64 {
	return float64(t) / float64(scale)
}

func precisionScale(precision int) int64 {
	s := int64(1)
	for i := 0; i < precision; i++ {
		s *= 10
	}
	return s
}

// divRound divides rounding half away from zero.
func divRound(num, den int64) int64 {
	if den < 0 {
		num, den = -num, -den
	}
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

// Weighted returns round(score * weight / 100) at the given precision using
// the same fixed-point path as the scorer.
func Weighted(score, weight float64, precision int) float64 {
	scale := precisionScale(precision)
	return points(weightedTicks(ticks(score, scale), ticks(weight, weightUnit)), scale)
}

func weightedTicks(scoreTicks, weightHundredths int64) int64 {
	return divRound(scoreTicks*weightHundredths, 100*weightUnit)
}
