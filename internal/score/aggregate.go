package score

// Aggregation is the result of combining one category's checks.
type Aggregation struct {
	Score            float64
	InsufficientData bool
	Unavailable      int

	ticks int64
}

// Aggregate combines checks into a category score in [0,100]: the
// arithmetic mean of check values rounded to precision decimals.
//
// With no checks the score falls back to 0 and InsufficientData is set.
// Unavailable checks count as 0 in the mean and also set InsufficientData.
func Aggregate(checks []Check, precision int) Aggregation {
	if precision < 0 || precision > maxPrec {
		precision = 0
	}
	scale := precisionScale(precision)

	if len(checks) == 0 {
		return Aggregation{InsufficientData: true}
	}

	var sum int64
	unavailable := 0
	for _, c := range checks {
		if !c.Available {
			unavailable++
			continue
		}
		sum += ticks(clampPoints(c.Value), checkUnit)
	}

	t := divRound(sum*scale, int64(len(checks))*checkUnit)
	return Aggregation{
		Score:            points(t, scale),
		InsufficientData: unavailable > 0,
		Unavailable:      unavailable,
		ticks:            t,
	}
}
