// Package config loads the readiness model: categories, weights, the checks
// each category aggregates and the phase table.
package config

import (
	"bytes"
	_ "embed"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/phase"
	"github.com/silver2dream/repo-readiness/internal/score"
)

//go:embed default.yaml
var defaultYAML []byte

// RepoFile is the per-repository config file name.
const RepoFile = ".dprs.yaml"

// DefaultPrecision applies when a config file omits precision.
const DefaultPrecision = 1

// Source names where a configuration came from.
const (
	SourceFlag     = "flag"
	SourceEnv      = "env"
	SourceRepo     = "repo"
	SourceEmbedded = "embedded"
)

// Config represents a .dprs.yaml file.
type Config struct {
	Version    int              `yaml:"version"`
	Precision  int              `yaml:"precision"`
	Categories []CategoryConfig `yaml:"categories"`
	Phases     []phase.Phase    `yaml:"phases,omitempty"`

	// Path is the file the config was loaded from, empty for the embedded default.
	Path string `yaml:"-"`
}

// CategoryConfig holds one scored category.
type CategoryConfig struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description,omitempty"`
	Weight      float64  `yaml:"weight"`
	Checks      []string `yaml:"checks"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field    string
	Message  string
	Expected string
}

func (e ValidationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s (expected: %s)", e.Field, e.Message, e.Expected)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic("config: invalid embedded default: " + err.Error())
	}
	return cfg
}

// DefaultYAML returns the embedded configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	cfg := Config{Precision: DefaultPrecision}
	if err := dec.Decode(&cfg); err != nil {
		return nil, rerr.NewConfigErrorWithCause("failed to parse config", err)
	}
	return &cfg, nil
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.NewConfigErrorWithCause("failed to read config file", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, rerr.NewConfigErrorWithCause(fmt.Sprintf("invalid config file %s", path), err)
	}
	cfg.Path = path
	return cfg, nil
}

// Resolve picks the configuration for a run: the explicit flag path, then
// the env path, then <repoDir>/.dprs.yaml, then the embedded default. It
// returns the config and which source won.
func Resolve(flagPath, envPath, repoDir string) (*Config, string, error) {
	if flagPath != "" {
		cfg, err := LoadConfig(flagPath)
		return cfg, SourceFlag, err
	}
	if envPath != "" {
		cfg, err := LoadConfig(envPath)
		return cfg, SourceEnv, err
	}
	if repoDir != "" {
		path := filepath.Join(repoDir, RepoFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			cfg, err := LoadConfig(path)
			return cfg, SourceRepo, err
		}
	}
	return Default(), SourceEmbedded, nil
}

// Marshal encodes the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks the configuration structure and returns every problem
// found. Check ids are not resolved here; see ValidateChecks.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Version != 0 && c.Version != 1 {
		errors = append(errors, ValidationError{
			Field:    "version",
			Message:  fmt.Sprintf("unsupported version: %d", c.Version),
			Expected: "1",
		})
	}

	if c.Precision < 0 || c.Precision > 4 {
		errors = append(errors, ValidationError{
			Field:    "precision",
			Message:  fmt.Sprintf("invalid value: %d", c.Precision),
			Expected: "0 to 4",
		})
	}

	if len(c.Categories) == 0 {
		errors = append(errors, ValidationError{
			Field:   "categories",
			Message: "at least one category is required",
		})
	}

	ids := make(map[string]bool)
	owner := make(map[string]string)
	var sum float64
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		id := strings.TrimSpace(cat.ID)
		if id == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".id",
				Message: "required field is missing",
			})
		} else if ids[id] {
			errors = append(errors, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate category: %s", id),
			})
		}
		ids[id] = true

		if !(cat.Weight >= score.MinWeight) || math.IsInf(cat.Weight, 0) {
			errors = append(errors, ValidationError{
				Field:    field + ".weight",
				Message:  fmt.Sprintf("invalid value: %g", cat.Weight),
				Expected: fmt.Sprintf("at least %g", score.MinWeight),
			})
		}
		sum += cat.Weight

		if len(cat.Checks) == 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".checks",
				Message: "category has no checks configured",
			})
		}
		for j, check := range cat.Checks {
			checkField := fmt.Sprintf("%s.checks[%d]", field, j)
			if strings.TrimSpace(check) == "" {
				errors = append(errors, ValidationError{
					Field:   checkField,
					Message: "required field is missing",
				})
				continue
			}
			if prev, ok := owner[check]; ok {
				errors = append(errors, ValidationError{
					Field:   checkField,
					Message: fmt.Sprintf("check %s already assigned to %s", check, prev),
				})
				continue
			}
			owner[check] = id
		}
	}

	if len(c.Categories) > 0 && math.Abs(sum-score.WeightTotal) > 0.01 {
		errors = append(errors, ValidationError{
			Field:    "categories[].weight",
			Message:  fmt.Sprintf("weights sum to %g", sum),
			Expected: "100",
		})
	}

	if len(c.Phases) > 0 {
		if _, err := phase.NewTable(c.Phases); err != nil {
			errors = append(errors, ValidationError{
				Field:   "phases",
				Message: configMessage(err),
			})
		}
	}

	return errors
}

// ValidateChecks reports configured check ids that known does not accept.
func (c *Config) ValidateChecks(known func(id string) bool) []ValidationError {
	var errors []ValidationError
	for i, cat := range c.Categories {
		for j, check := range cat.Checks {
			if check == "" || known(check) {
				continue
			}
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("categories[%d].checks[%d]", i, j),
				Message: fmt.Sprintf("unknown check: %s", check),
			})
		}
	}
	return errors
}

// Model validates the configuration and builds the scoring model. A nil
// known func skips check id resolution.
func (c *Config) Model(known func(id string) bool) (*score.Model, error) {
	errs := c.Validate()
	if known != nil {
		errs = append(errs, c.ValidateChecks(known)...)
	}
	if len(errs) > 0 {
		return nil, joinValidation(errs)
	}

	table := phase.DefaultTable()
	if len(c.Phases) > 0 {
		t, err := phase.NewTable(c.Phases)
		if err != nil {
			return nil, err
		}
		table = t
	}

	specs := make([]score.CategorySpec, len(c.Categories))
	for i, cat := range c.Categories {
		specs[i] = score.CategorySpec{
			ID:          strings.TrimSpace(cat.ID),
			Description: cat.Description,
			Weight:      cat.Weight,
			Checks:      cat.Checks,
		}
	}

	return score.NewModel(specs, score.WithPrecision(c.Precision), score.WithPhases(table))
}

func joinValidation(errs []ValidationError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return rerr.NewConfigErrorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func configMessage(err error) string {
	var re *rerr.ReadinessError
	if stderrors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
