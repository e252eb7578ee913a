package advise

// Severity represents the severity level of a recommendation.
type Severity string

const (
	SeverityP0 Severity = "P0"
	SeverityP1 Severity = "P1"
	SeverityP2 Severity = "P2"
)

// Gain thresholds, in total score points, for each severity.
const (
	p0Gain = 5.0
	p1Gain = 2.0
)

// Recommendation is one improvement that would raise the total score.
type Recommendation struct {
	Check    string   `json:"check"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	// Gain is the total score increase if the check reached full value.
	Gain    float64 `json:"potential_gain"`
	Message string  `json:"message"`
	Detail  string  `json:"detail,omitempty"`
}

// Summary holds counts of recommendations by severity.
type Summary struct {
	P0Count int `json:"p0_count"`
	P1Count int `json:"p1_count"`
	P2Count int `json:"p2_count"`
}

// SeverityFor classifies a potential gain.
func SeverityFor(gain float64) Severity {
	switch {
	case gain >= p0Gain:
		return SeverityP0
	case gain >= p1Gain:
		return SeverityP1
	default:
		return SeverityP2
	}
}
