// Package scan builds a file inventory of a repository in one walk so that
// probes can answer existence and counting questions without touching the
// filesystem again.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// MaxFiles bounds the walk on very large trees.
const MaxFiles = 200000

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"bin":          true,
	"obj":          true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	".tox":         true,
	".idea":        true,
	"Library":      true, // unity
}

var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".java": true, ".kt": true, ".rs": true, ".rb": true,
	".cs": true, ".c": true, ".cc": true, ".cpp": true, ".h": true, ".hpp": true,
	".swift": true, ".php": true, ".scala": true, ".ex": true, ".exs": true,
}

// Inventory contains the results of scanning a repository. It is immutable
// once returned and safe for concurrent use.
type Inventory struct {
	Root        string   `json:"root"`
	Languages   []string `json:"languages"`
	SourceFiles int      `json:"source_files"`
	TestFiles   int      `json:"test_files"`
	Truncated   bool     `json:"truncated,omitempty"`

	files []string
	index map[string]string
}

// Scan walks root and returns its inventory.
func Scan(ctx context.Context, root string) (*Inventory, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, os.ErrNotExist
	}

	inv := &Inventory{
		Root:  absPath,
		index: make(map[string]string),
	}

	walkErr := filepath.WalkDir(absPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // continue walking on error
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != absPath && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(inv.files) >= MaxFiles {
			inv.Truncated = true
			return filepath.SkipAll
		}

		rel, err := filepath.Rel(absPath, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		inv.files = append(inv.files, rel)
		inv.index[strings.ToLower(rel)] = rel

		if IsSourceFile(rel) {
			inv.SourceFiles++
			if IsTestFile(rel) {
				inv.TestFiles++
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(inv.files)
	inv.Languages = DetectLanguages(absPath)
	return inv, nil
}

// Files returns the relative, slash-separated paths of all files.
func (inv *Inventory) Files() []string {
	return append([]string(nil), inv.files...)
}

// Has reports whether rel exists as a file. The match is case-insensitive.
func (inv *Inventory) Has(rel string) bool {
	_, ok := inv.index[strings.ToLower(rel)]
	return ok
}

// First returns the first of rels that exists, with the on-disk casing.
func (inv *Inventory) First(rels ...string) (string, bool) {
	for _, rel := range rels {
		if actual, ok := inv.index[strings.ToLower(rel)]; ok {
			return actual, true
		}
	}
	return "", false
}

// HasDir reports whether any file lives under dir.
func (inv *Inventory) HasDir(dir string) bool {
	prefix := strings.ToLower(strings.TrimSuffix(dir, "/")) + "/"
	for lower := range inv.index {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Glob returns the files matching a path.Match pattern, sorted.
func (inv *Inventory) Glob(pattern string) []string {
	var out []string
	for _, f := range inv.files {
		if ok, _ := path.Match(pattern, f); ok {
			out = append(out, f)
		}
	}
	return out
}

// Find returns the files for which match is true, sorted.
func (inv *Inventory) Find(match func(rel string) bool) []string {
	var out []string
	for _, f := range inv.files {
		if match(f) {
			out = append(out, f)
		}
	}
	return out
}

// ReadFile reads a file relative to the root.
func (inv *Inventory) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(inv.Root, filepath.FromSlash(rel)))
}

// IsSourceFile reports whether rel has a recognized source extension.
func IsSourceFile(rel string) bool {
	return sourceExts[strings.ToLower(path.Ext(rel))]
}

// IsTestFile reports whether rel looks like a test file in any of the
// recognized ecosystems.
func IsTestFile(rel string) bool {
	if !IsSourceFile(rel) {
		return false
	}
	name := path.Base(rel)
	lower := strings.ToLower(name)
	ext := strings.ToLower(path.Ext(name))
	stem := strings.TrimSuffix(name, path.Ext(name))

	switch ext {
	case ".go":
		return strings.HasSuffix(lower, "_test.go")
	case ".py":
		if strings.HasPrefix(lower, "test_") || strings.HasSuffix(lower, "_test.py") {
			return true
		}
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
		if strings.Contains(lower, ".test.") || strings.Contains(lower, ".spec.") {
			return true
		}
	case ".java", ".kt", ".cs", ".scala", ".swift", ".php":
		if strings.HasSuffix(stem, "Test") || strings.HasSuffix(stem, "Tests") || strings.HasSuffix(stem, "Spec") {
			return true
		}
	case ".rb", ".ex", ".exs":
		if strings.HasSuffix(lower, "_spec"+ext) || strings.HasSuffix(lower, "_test"+ext) {
			return true
		}
	}

	return inTestDir(rel)
}

// inTestDir matches files under conventional test directories, including
// the Unity test folders.
func inTestDir(rel string) bool {
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		switch strings.ToLower(seg) {
		case "test", "tests", "__tests__", "spec", "testing", "playmodetests", "editmodetests":
			return true
		}
	}
	return false
}

// languageMarkers maps a marker file to the language it signals.
var languageMarkers = []struct {
	file     string
	language string
}{
	{"go.mod", "go"},
	{"Cargo.toml", "rust"},
	{"package.json", "javascript"},
	{"tsconfig.json", "typescript"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"requirements.txt", "python"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"build.gradle.kts", "kotlin"},
	{"Gemfile", "ruby"},
	{"composer.json", "php"},
	{"mix.exs", "elixir"},
	{"Package.swift", "swift"},
}

// DetectLanguages returns the languages signalled by marker files at the
// repository root, in a stable order without duplicates.
func DetectLanguages(root string) []string {
	var langs []string
	seen := make(map[string]bool)
	add := func(l string) {
		if !seen[l] {
			seen[l] = true
			langs = append(langs, l)
		}
	}

	for _, m := range languageMarkers {
		if FileExists(filepath.Join(root, m.file)) {
			add(m.language)
		}
	}
	if matches, _ := filepath.Glob(filepath.Join(root, "*.csproj")); len(matches) > 0 {
		add("csharp")
	} else if matches, _ := filepath.Glob(filepath.Join(root, "*.sln")); len(matches) > 0 {
		add("csharp")
	}
	if DirExists(filepath.Join(root, "ProjectSettings")) {
		add("unity")
	}
	return langs
}

// DetectLanguage returns the primary language or "unknown".
func DetectLanguage(root string) string {
	if langs := DetectLanguages(root); len(langs) > 0 {
		return langs[0]
	}
	return "unknown"
}

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
