package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
)

// DefaultOutputDir is where artifacts are written when neither --output
// nor DPRS_OUTPUT is set.
const DefaultOutputDir = "artifacts"

// Env holds settings read from the environment. Command-line flags take
// precedence over these values.
type Env struct {
	Config       string        `env:"DPRS_CONFIG"`
	Output       string        `env:"DPRS_OUTPUT"        envDefault:"artifacts"`
	Verbose      bool          `env:"DPRS_VERBOSE"`
	LogLevel     string        `env:"DPRS_LOG_LEVEL"     envDefault:"warn"`
	LogFormat    string        `env:"DPRS_LOG_FORMAT"    envDefault:"text"`
	Parallel     int           `env:"DPRS_PARALLEL"      envDefault:"4"`
	ProbeTimeout time.Duration `env:"DPRS_PROBE_TIMEOUT" envDefault:"10s"`
	HistoryDB    string        `env:"DPRS_HISTORY_DB"`
	MinScore     float64       `env:"DPRS_MIN_SCORE"`

	// NoColor follows no-color.org: any non-empty value disables color.
	NoColor string `env:"NO_COLOR"`
}

// LoadEnv parses the environment. Malformed values are configuration errors.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, rerr.NewConfigErrorWithCause("parse env", err)
	}
	if e.Parallel < 1 {
		return Env{}, rerr.NewConfigErrorf("DPRS_PARALLEL must be at least 1, got %d", e.Parallel)
	}
	if e.ProbeTimeout <= 0 {
		return Env{}, rerr.NewConfigErrorf("DPRS_PROBE_TIMEOUT must be positive, got %s", e.ProbeTimeout)
	}
	return e, nil
}

// ColorDisabled reports whether NO_COLOR is set.
func (e Env) ColorDisabled() bool {
	return e.NoColor != ""
}
