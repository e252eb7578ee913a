package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/silver2dream/repo-readiness/internal/score"
)

// Bounds for the line ending probe.
const (
	maxEncodingFiles = 500
	maxEncodingBytes = 64 * 1024
)

func devExProbes() []Probe {
	return []Probe{
		{
			ID:          "task_runner",
			Category:    CategoryDevEx,
			Kind:        score.KindBool,
			Description: "Common tasks are scripted (Makefile, justfile, Taskfile, npm scripts)",
			Remedy:      "Add a Makefile or task runner for build, test and lint",
			Run:         checkTaskRunner,
		},
		{
			ID:          "editor_config",
			Category:    CategoryDevEx,
			Kind:        score.KindBool,
			Description: "Editor settings are shared via .editorconfig",
			Remedy:      "Add an .editorconfig",
			Run:         existsProbe(".editorconfig"),
		},
		{
			ID:          "lint_config",
			Category:    CategoryDevEx,
			Kind:        score.KindBool,
			Description: "Linter or formatter is configured",
			Remedy:      "Configure a linter (golangci-lint, eslint, ruff, rubocop, ...)",
			Run:         checkLintConfig,
		},
		{
			ID:          "pre_commit",
			Category:    CategoryDevEx,
			Kind:        score.KindBool,
			Description: "Git hooks run checks before commit",
			Remedy:      "Set up pre-commit, husky or lefthook",
			Run:         checkPreCommit,
		},
		{
			ID:          "dev_environment",
			Category:    CategoryDevEx,
			Kind:        score.KindBool,
			Description: "Development environment is reproducible",
			Remedy:      "Add a devcontainer, Dockerfile, compose file or tool version pins",
			Run:         checkDevEnvironment,
		},
		{
			ID:          "line_endings",
			Category:    CategoryDevEx,
			Kind:        score.KindNumeric,
			Description: "Text files use LF line endings and no UTF-16 BOM",
			Remedy:      "Normalize line endings with a .gitattributes `* text=auto eol=lf`",
			Run:         checkLineEndings,
		},
	}
}

func checkTaskRunner(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, "Makefile", "GNUmakefile", "justfile", ".justfile", "Taskfile.yml", "Taskfile.yaml", "magefile.go", "noxfile.py", "Rakefile", "build.sh"); ok {
		return Found(true, "found "+f, ""), nil
	}
	if fileContains(t, "package.json", `"scripts"`) {
		return Found(true, "npm scripts in package.json", ""), nil
	}
	if fileContains(t, "pyproject.toml", "[tool.poe.tasks]") || fileContains(t, "pyproject.toml", "[tool.hatch.envs") {
		return Found(true, "tasks in pyproject.toml", ""), nil
	}
	return Found(false, "", "no task runner found"), nil
}

var lintFiles = []string{
	".golangci.yml", ".golangci.yaml", ".golangci.toml", ".golangci.json",
	"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs", "eslint.config.ts",
	".flake8", "ruff.toml", ".ruff.toml", ".pylintrc", "pylintrc", ".rubocop.yml",
	"biome.json", "biome.jsonc", "clippy.toml", "rustfmt.toml", ".rustfmt.toml",
	".swiftlint.yml", ".php-cs-fixer.php", "phpcs.xml", "checkstyle.xml", ".credo.exs",
	".stylelintrc", ".markdownlint.json", ".markdownlint.yaml",
}

var lintPatterns = []string{".eslintrc*", ".prettierrc*"}

func checkLintConfig(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, lintFiles...); ok {
		return Found(true, "found "+f, ""), nil
	}
	if f, ok := globAny(t, lintPatterns...); ok {
		return Found(true, "found "+f, ""), nil
	}
	for _, section := range []string{"[tool.ruff", "[tool.black", "[tool.pylint", "[tool.mypy"} {
		if fileContains(t, "pyproject.toml", section) {
			return Found(true, "linter configured in pyproject.toml", ""), nil
		}
	}
	if fileContains(t, "package.json", `"eslintConfig"`) {
		return Found(true, "eslint configured in package.json", ""), nil
	}
	return Found(false, "", "no linter configuration found"), nil
}

func checkPreCommit(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, ".pre-commit-config.yaml", ".pre-commit-config.yml", "lefthook.yml", ".lefthook.yml", "lefthook.yaml", ".overcommit.yml"); ok {
		return Found(true, "found "+f, ""), nil
	}
	for _, dir := range []string{".husky", ".githooks"} {
		if t.Files.HasDir(dir) {
			return Found(true, dir+"/ hooks", ""), nil
		}
	}
	return Found(false, "", "no git hook manager configured"), nil
}

var devEnvFiles = []string{
	".devcontainer/devcontainer.json", ".devcontainer.json", "Dockerfile", "docker-compose.yml",
	"docker-compose.yaml", "compose.yml", "compose.yaml", "flake.nix", "shell.nix", "devbox.json",
	".tool-versions", "mise.toml", ".mise.toml", ".nvmrc", ".node-version", ".python-version",
	".ruby-version", "rust-toolchain.toml", "rust-toolchain", ".gitpod.yml", "Vagrantfile",
}

func checkDevEnvironment(_ context.Context, t *Target) (Finding, error) {
	if f, ok := firstFile(t, devEnvFiles...); ok {
		return Found(true, "found "+f, ""), nil
	}
	return Found(false, "", "no reproducible environment definition"), nil
}

// textExtensions are checked for line endings.
var textExtensions = map[string]bool{
	".md": true, ".yaml": true, ".yml": true, ".json": true, ".txt": true, ".sh": true,
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".rs": true, ".rb": true, ".java": true, ".kt": true, ".toml": true, ".cfg": true,
	".ini": true, ".html": true, ".css": true, ".scss": true, ".sql": true, ".xml": true,
}

func checkLineEndings(ctx context.Context, t *Target) (Finding, error) {
	files := t.Files.Find(func(rel string) bool {
		return textExtensions[strings.ToLower(path.Ext(rel))]
	})
	if len(files) == 0 {
		return Finding{}, fmt.Errorf("%w: no text files", ErrNoSignal)
	}
	if len(files) > maxEncodingFiles {
		files = files[:maxEncodingFiles]
	}

	var problems []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return Finding{}, err
		}
		hasCRLF, hasUTF16BOM := checkFileEncoding(filepath.Join(t.Root, filepath.FromSlash(f)))
		if hasCRLF {
			problems = append(problems, f+" (CRLF)")
		} else if hasUTF16BOM {
			problems = append(problems, f+" (UTF-16 BOM)")
		}
	}

	clean := len(files) - len(problems)
	value := float64(clean) / float64(len(files)) * 100
	if len(problems) == 0 {
		return Finding{Value: value, Detail: fmt.Sprintf("%d text files clean", len(files))}, nil
	}
	return Finding{
		Value:  value,
		Detail: fmt.Sprintf("%d of %d text files with encoding issues: %s", len(problems), len(files), joinNames(problems, 3)),
	}, nil
}

// checkFileEncoding checks if a file has CRLF line endings or UTF-16 BOM.
// Only the first maxEncodingBytes are read.
func checkFileEncoding(p string) (hasCRLF bool, hasUTF16BOM bool) {
	file, err := os.Open(p)
	if err != nil {
		return false, false
	}
	defer file.Close()

	buf, err := io.ReadAll(io.LimitReader(file, maxEncodingBytes))
	if err != nil || len(buf) < 2 {
		return false, false
	}

	// UTF-16 BOM (LE: FF FE or BE: FE FF)
	if (buf[0] == 0xFF && buf[1] == 0xFE) || (buf[0] == 0xFE && buf[1] == 0xFF) {
		hasUTF16BOM = true
	}
	hasCRLF = strings.Contains(string(buf), "\r\n")
	return hasCRLF, hasUTF16BOM
}
