package probe

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/silver2dream/repo-readiness/internal/score"
)

// Built-in category ids.
const (
	CategoryTests         = "tests"
	CategorySecurity      = "security"
	CategoryDocumentation = "documentation"
	CategoryDevEx         = "developer_experience"
)

// TargetTestRatio is the test-to-source file ratio that earns full marks.
const TargetTestRatio = 0.3

var ciYAMLPatterns = []string{
	".github/workflows/*.yml",
	".github/workflows/*.yaml",
	".gitlab-ci.yml",
	".circleci/config.yml",
	"azure-pipelines.yml",
	"bitbucket-pipelines.yml",
	".travis.yml",
	".woodpecker.yml",
	".drone.yml",
}

var ciOtherFiles = []string{"Jenkinsfile", ".buildkite/pipeline.yml"}

func testProbes() []Probe {
	return []Probe{
		{
			ID:          "test_files",
			Category:    CategoryTests,
			Kind:        score.KindBool,
			Description: "Repository contains automated test files",
			Remedy:      "Add automated tests next to the code they cover",
			Run:         checkTestFiles,
		},
		{
			ID:          "test_ratio",
			Category:    CategoryTests,
			Kind:        score.KindNumeric,
			Description: fmt.Sprintf("Test files per source file, full marks at %.0f%%", TargetTestRatio*100),
			Remedy:      "Increase test coverage of untested source files",
			Run:         checkTestRatio,
		},
		{
			ID:          "test_config",
			Category:    CategoryTests,
			Kind:        score.KindBool,
			Description: "Test runner is configured",
			Remedy:      "Configure a test runner (jest, vitest, pytest, go test, ...)",
			Run:         checkTestConfig,
		},
		{
			ID:          "ci_workflow",
			Category:    CategoryTests,
			Kind:        score.KindBool,
			Description: "Continuous integration is configured and its YAML is valid",
			Remedy:      "Add a CI workflow that runs the test suite on every push",
			Run:         checkCIWorkflow,
		},
		{
			ID:          "coverage_config",
			Category:    CategoryTests,
			Kind:        score.KindBool,
			Description: "Test coverage is measured",
			Remedy:      "Collect coverage in CI (codecov, coveralls, -coverprofile, --cov)",
			Run:         checkCoverage,
		},
	}
}

func checkTestFiles(_ context.Context, t *Target) (Finding, error) {
	n := t.Files.TestFiles
	return Found(n > 0,
		fmt.Sprintf("%d test files", n),
		"no test files found"), nil
}

func checkTestRatio(_ context.Context, t *Target) (Finding, error) {
	tests := t.Files.TestFiles
	sources := t.Files.SourceFiles - tests
	if sources <= 0 {
		if tests > 0 {
			return Finding{Value: 100, Detail: fmt.Sprintf("%d test files, no non-test sources", tests)}, nil
		}
		return Finding{}, fmt.Errorf("%w: no source files", ErrNoSignal)
	}
	ratio := float64(tests) / float64(sources)
	value := math.Min(ratio/TargetTestRatio, 1) * 100
	return Finding{
		Value:  value,
		Detail: fmt.Sprintf("%d test files for %d source files (%.2f)", tests, sources, ratio),
	}, nil
}

var testConfigFiles = []string{
	"pytest.ini", "conftest.py", "tox.ini", "noxfile.py",
	"phpunit.xml", "phpunit.xml.dist", ".rspec", "karma.conf.js",
	".mocharc.json", ".mocharc.yml", ".mocharc.js", "ava.config.js",
	"playwright.config.ts", "playwright.config.js", "cypress.config.ts", "cypress.config.js",
}

var testConfigPatterns = []string{
	"jest.config.*", "vitest.config.*", "tests/conftest.py", "test/conftest.py",
}

func checkTestConfig(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, testConfigFiles...); ok {
		return Found(true, "found "+f, ""), nil
	}
	if f, ok := globAny(t, testConfigPatterns...); ok {
		return Found(true, "found "+f, ""), nil
	}
	// Built-in runners need no config file once tests exist.
	if t.Files.TestFiles > 0 {
		for _, marker := range []string{"go.mod", "Cargo.toml", "mix.exs"} {
			if t.Files.Has(marker) {
				return Found(true, "built-in test runner ("+marker+")", ""), nil
			}
		}
	}
	if fileContains(t, "pyproject.toml", "[tool.pytest") {
		return Found(true, "pytest configured in pyproject.toml", ""), nil
	}
	if fileContains(t, "package.json", `"test"`) && !fileContains(t, "package.json", "no test specified") {
		return Found(true, "test script in package.json", ""), nil
	}
	return Found(false, "", "no test runner configuration found"), nil
}

// ciFiles lists CI configuration files present in the target.
func ciFiles(t *Target) (yamlFiles, others []string) {
	for _, p := range ciYAMLPatterns {
		yamlFiles = append(yamlFiles, t.Files.Glob(p)...)
	}
	for _, f := range ciOtherFiles {
		if actual, ok := firstFile(t, f); ok {
			others = append(others, actual)
		}
	}
	return yamlFiles, others
}

func checkCIWorkflow(_ context.Context, t *Target) (Finding, error) {
	yamlFiles, others := ciFiles(t)
	if len(yamlFiles) == 0 && len(others) == 0 {
		return Found(false, "", "no CI configuration found"), nil
	}

	var invalid []string
	for _, f := range yamlFiles {
		data, err := t.Files.ReadFile(f)
		if err != nil {
			return Finding{}, fmt.Errorf("read %s: %w", f, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil || len(doc) == 0 {
			invalid = append(invalid, f)
		}
	}
	if len(invalid) > 0 {
		return Found(false, "", "invalid CI YAML: "+strings.Join(invalid, ", ")), nil
	}

	all := append(yamlFiles, others...)
	return Found(true, fmt.Sprintf("%d CI config files (%s)", len(all), joinNames(all, 2)), ""), nil
}

var coverageFiles = []string{
	"codecov.yml", ".codecov.yml", ".coveragerc", ".nycrc", ".nycrc.json", ".coveralls.yml",
	".github/codecov.yml", "tarpaulin.toml",
}

var coverageMarkers = []string{
	"coverprofile", "-cover", "--cov", "coverage", "codecov", "coveralls", "tarpaulin", "llvm-cov",
}

func checkCoverage(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, coverageFiles...); ok {
		return Found(true, "found "+f, ""), nil
	}

	yamlFiles, others := ciFiles(t)
	for _, f := range append(yamlFiles, others...) {
		for _, m := range coverageMarkers {
			if fileContains(t, f, m) {
				return Found(true, "coverage collected in "+f, ""), nil
			}
		}
	}
	for _, f := range []string{"Makefile", "package.json", "pyproject.toml", "setup.cfg", "jest.config.js", "vitest.config.ts"} {
		if fileContains(t, f, "coverage") || fileContains(t, f, "-coverprofile") {
			return Found(true, "coverage configured in "+f, ""), nil
		}
	}
	return Found(false, "", "no coverage configuration found"), nil
}

// fileContains reports whether rel exists and contains needle, compared
// case-insensitively. Read errors count as false.
func fileContains(t *Target, rel, needle string) bool {
	actual, ok := firstFile(t, rel)
	if !ok {
		return false
	}
	data, err := t.Files.ReadFile(actual)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), strings.ToLower(needle))
}

// isYAML reports whether rel has a YAML extension.
func isYAML(rel string) bool {
	ext := strings.ToLower(path.Ext(rel))
	return ext == ".yml" || ext == ".yaml"
}
