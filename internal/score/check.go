package score

import (
	"math"
)

// Kind tags how a check value was produced.
type Kind string

const (
	KindBool    Kind = "bool"
	KindNumeric Kind = "numeric"
)

// Check is one normalized signal about a repository. Value is always in
// [0,100]; booleans map false to 0 and true to 100. A check whose signal
// could not be collected has Available false, Value 0 and an Error.
type Check struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	Value       float64 `json:"value"`
	Available   bool    `json:"available"`
	Description string  `json:"description,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Bool creates a boolean check.
func Bool(id string, ok bool, description string) Check {
	v := 0.0
	if ok {
		v = 100
	}
	return Check{ID: id, Kind: KindBool, Value: v, Available: true, Description: description}
}

// Pass creates a passing boolean check with the given description.
func Pass(id, description string) Check {
	return Bool(id, true, description)
}

// Fail creates a failing boolean check with the given description.
func Fail(id, description string) Check {
	return Bool(id, false, description)
}

// Numeric creates a numeric check. The value is clamped to [0,100]; NaN is 0.
func Numeric(id string, value float64, description string) Check {
	return Check{ID: id, Kind: KindNumeric, Value: clampPoints(value), Available: true, Description: description}
}

// Ratio creates a numeric check from got/max, scaled to [0,100].
func Ratio(id string, got, max float64, description string) Check {
	if max <= 0 {
		return Numeric(id, 0, description)
	}
	return Numeric(id, got/max*100, description)
}

// Unavailable records a signal that could not be collected.
func Unavailable(id string, err error) Check {
	msg := "signal unavailable"
	if err != nil {
		msg = err.Error()
	}
	return Check{ID: id, Kind: KindBool, Available: false, Error: msg}
}

// Passed reports whether the check is available and at full value.
func (c Check) Passed() bool {
	return c.Available && c.Value >= 100
}

func clampPoints(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
