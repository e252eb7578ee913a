package probe

import (
	"context"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/score"
)

func securityProbes() []Probe {
	return []Probe{
		{
			ID:          "security_policy",
			Category:    CategorySecurity,
			Kind:        score.KindBool,
			Description: "Security policy describes how to report vulnerabilities",
			Remedy:      "Add SECURITY.md with a vulnerability disclosure process",
			Run:         existsProbe("SECURITY.md", ".github/SECURITY.md", "docs/SECURITY.md", "SECURITY.rst", "SECURITY.txt"),
		},
		{
			ID:          "dependency_updates",
			Category:    CategorySecurity,
			Kind:        score.KindBool,
			Description: "Automated dependency updates are configured",
			Remedy:      "Enable Dependabot or Renovate for dependency updates",
			Run:         checkDependencyUpdates,
		},
		{
			ID:          "secret_hygiene",
			Category:    CategorySecurity,
			Kind:        score.KindNumeric,
			Description: "No secret-like files are tracked and .env files are git-ignored",
			Remedy:      "Remove committed secrets and ignore .env files in .gitignore",
			Run:         checkSecretHygiene,
		},
		{
			ID:          "code_scanning",
			Category:    CategorySecurity,
			Kind:        score.KindBool,
			Description: "Static security analysis runs in CI",
			Remedy:      "Run CodeQL, Semgrep, gosec or a similar scanner in CI",
			Run:         checkCodeScanning,
		},
		{
			ID:          "lockfile",
			Category:    CategorySecurity,
			Kind:        score.KindBool,
			Description: "Dependency versions are pinned by a lockfile",
			Remedy:      "Commit the package manager lockfile",
			Run:         checkLockfile,
		},
	}
}

var dependencyUpdateFiles = []string{
	".github/dependabot.yml",
	".github/dependabot.yaml",
	"renovate.json",
	"renovate.json5",
	".renovaterc",
	".renovaterc.json",
	".github/renovate.json",
	".github/renovate.json5",
}

func checkDependencyUpdates(_ context.Context, t *Target) (Finding, error) {
	f, ok := firstFile(t, dependencyUpdateFiles...)
	if !ok {
		return Found(false, "", "no Dependabot or Renovate configuration found"), nil
	}
	if isYAML(f) {
		data, err := t.Files.ReadFile(f)
		if err != nil {
			return Finding{}, fmt.Errorf("read %s: %w", f, err)
		}
		var doc struct {
			Updates []map[string]any `yaml:"updates"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Found(false, "", f+" is not valid YAML"), nil
		}
		if len(doc.Updates) == 0 {
			return Found(false, "", f+" configures no update ecosystems"), nil
		}
		return Found(true, fmt.Sprintf("%s configures %d ecosystems", f, len(doc.Updates)), ""), nil
	}
	return Found(true, "found "+f, ""), nil
}

// secretPatterns match file names that commonly hold credentials.
var secretPatterns = []string{
	".env", ".env.*", "*.pem", "*.key", "*.p12", "*.pfx", "id_rsa", "id_dsa", "id_ecdsa", "id_ed25519",
	"credentials.json", "*.keystore", ".pypirc", ".netrc",
}

// secretAllowed are templates that look like secrets but are meant to be
// committed.
var secretAllowed = []string{".env.example", ".env.sample", ".env.template", ".env.dist"}

func isSecretLike(rel string) bool {
	base := strings.ToLower(path.Base(rel))
	for _, a := range secretAllowed {
		if base == a {
			return false
		}
	}
	for _, p := range secretPatterns {
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}

func checkSecretHygiene(ctx context.Context, t *Target) (Finding, error) {
	if !t.IsGit {
		return Finding{}, git.ErrNotRepository
	}

	tracked, err := git.LsFiles(ctx, t.Root)
	if err != nil {
		return Finding{}, err
	}
	var leaked []string
	for _, f := range tracked {
		if isSecretLike(f) {
			leaked = append(leaked, f)
		}
	}
	if len(leaked) > 0 {
		return Finding{Value: 0, Detail: "tracked secret-like files: " + joinNames(leaked, 3)}, nil
	}

	ignored, err := git.CheckIgnore(ctx, t.Root, ".env")
	if err != nil {
		return Finding{}, err
	}
	if len(ignored) == 0 {
		return Finding{Value: 50, Detail: "no secrets tracked but .env is not git-ignored"}, nil
	}
	return Finding{Value: 100, Detail: "no secrets tracked and .env is git-ignored"}, nil
}

var codeScanningMarkers = []string{
	"github/codeql-action", "codeql", "semgrep", "gosec", "govulncheck", "snyk", "trivy",
	"bandit", "brakeman", "sonarcloud", "sonarqube", "osv-scanner", "gitleaks", "trufflehog",
}

func checkCodeScanning(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, ".snyk", ".semgrep.yml", ".github/codeql/codeql-config.yml", ".gitleaks.toml", "sonar-project.properties"); ok {
		return Found(true, "found "+f, ""), nil
	}
	yamlFiles, others := ciFiles(t)
	for _, f := range append(yamlFiles, others...) {
		for _, m := range codeScanningMarkers {
			if fileContains(t, f, m) {
				return Found(true, m+" runs in "+f, ""), nil
			}
		}
	}
	if fileContains(t, ".pre-commit-config.yaml", "gitleaks") || fileContains(t, ".pre-commit-config.yaml", "detect-secrets") {
		return Found(true, "secret scanning in pre-commit", ""), nil
	}
	return Found(false, "", "no security scanner configured"), nil
}

// manifests maps a dependency manifest to the lockfiles that pin it.
var manifests = []struct {
	manifest  string
	lockfiles []string
}{
	{"go.mod", []string{"go.sum"}},
	{"package.json", []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "bun.lockb", "bun.lock", "npm-shrinkwrap.json"}},
	{"pyproject.toml", []string{"poetry.lock", "uv.lock", "pdm.lock", "requirements.lock"}},
	{"Pipfile", []string{"Pipfile.lock"}},
	{"Cargo.toml", []string{"Cargo.lock"}},
	{"Gemfile", []string{"Gemfile.lock"}},
	{"composer.json", []string{"composer.lock"}},
	{"mix.exs", []string{"mix.lock"}},
	{"build.gradle", []string{"gradle.lockfile"}},
	{"build.gradle.kts", []string{"gradle.lockfile"}},
	{"Package.swift", []string{"Package.resolved"}},
}

func checkLockfile(_ context.Context, t *Target) (Finding, error) {
	var missing []string
	var found []string
	seen := 0
	for _, m := range manifests {
		if !t.Files.Has(m.manifest) {
			continue
		}
		seen++
		if m.manifest == "go.mod" && !fileContains(t, "go.mod", "require") {
			found = append(found, "go.mod (no dependencies)")
			continue
		}
		if lf, ok := firstFile(t, m.lockfiles...); ok {
			found = append(found, lf)
		} else {
			missing = append(missing, m.manifest)
		}
	}
	if t.Files.Has("requirements.txt") && seen == 0 {
		seen++
		if fileContains(t, "requirements.txt", "==") {
			found = append(found, "requirements.txt (pinned)")
		} else {
			missing = append(missing, "requirements.txt")
		}
	}

	if seen == 0 {
		return Finding{}, fmt.Errorf("%w: no dependency manifest", ErrNoSignal)
	}
	if len(missing) > 0 {
		return Found(false, "", "no lockfile for "+strings.Join(missing, ", ")), nil
	}
	return Found(true, "pinned by "+strings.Join(found, ", "), ""), nil
}
