package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silver2dream/repo-readiness/internal/score"
)

var readmeNames = []string{"README.md", "README.rst", "README.txt", "README", "README.adoc", "docs/README.md", ".github/README.md"}

func documentationProbes() []Probe {
	return []Probe{
		{
			ID:          "readme",
			Category:    CategoryDocumentation,
			Kind:        score.KindNumeric,
			Description: "README exists and covers structure, installation and usage",
			Remedy:      "Write a README with installation and usage sections",
			Run:         checkReadme,
		},
		{
			ID:          "license",
			Category:    CategoryDocumentation,
			Kind:        score.KindBool,
			Description: "License file is present",
			Remedy:      "Add a LICENSE file",
			Run:         existsProbe("LICENSE", "LICENSE.md", "LICENSE.txt", "LICENCE", "LICENCE.md", "COPYING", "COPYING.md", "UNLICENSE"),
		},
		{
			ID:          "contributing",
			Category:    CategoryDocumentation,
			Kind:        score.KindBool,
			Description: "Contribution guide is present",
			Remedy:      "Add CONTRIBUTING.md describing how to propose changes",
			Run:         existsProbe("CONTRIBUTING.md", ".github/CONTRIBUTING.md", "docs/CONTRIBUTING.md", "CONTRIBUTING.rst", "CONTRIBUTING"),
		},
		{
			ID:          "changelog",
			Category:    CategoryDocumentation,
			Kind:        score.KindBool,
			Description: "Changes are recorded in a changelog",
			Remedy:      "Keep a CHANGELOG.md or release notes file",
			Run:         existsProbe("CHANGELOG.md", "CHANGELOG", "CHANGES.md", "HISTORY.md", "RELEASES.md", "NEWS.md", "CHANGELOG.rst"),
		},
		{
			ID:          "docs_dir",
			Category:    CategoryDocumentation,
			Kind:        score.KindBool,
			Description: "Project has documentation beyond the README",
			Remedy:      "Add a docs/ directory or documentation site config",
			Run:         checkDocsDir,
		},
	}
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6}\s+\S|=+\s*$|-{3,}\s*$)`)
	installRe = regexp.MustCompile(`(?i)\b(install|installation|getting started|quick ?start|setup|set up)\b`)
	usageRe   = regexp.MustCompile(`(?i)\b(usage|example|examples|how to use|running)\b`)
)

// readmeScore grades a README: 40 for existing, 20 for at least three
// headings, 20 for an install section and 20 for a usage section.
func readmeScore(data []byte) (float64, []string) {
	value := 40.0
	var missing []string

	headings := 0
	var hasInstall, hasUsage bool
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	prev := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if headingRe.MatchString(line) && (strings.HasPrefix(line, "#") || prev != "") {
			headings++
			title := line
			if !strings.HasPrefix(line, "#") {
				title = prev // setext heading underlines the previous line
			}
			if installRe.MatchString(title) {
				hasInstall = true
			}
			if usageRe.MatchString(title) {
				hasUsage = true
			}
		}
		prev = line
	}

	if headings >= 3 {
		value += 20
	} else {
		missing = append(missing, "structure")
	}
	if hasInstall {
		value += 20
	} else {
		missing = append(missing, "installation")
	}
	if hasUsage {
		value += 20
	} else {
		missing = append(missing, "usage")
	}
	return value, missing
}

func checkReadme(_ context.Context, t *Target) (Finding, error) {
	f, ok := firstFile(t, readmeNames...)
	if !ok {
		return Finding{Value: 0, Detail: "no README found"}, nil
	}
	data, err := t.Files.ReadFile(f)
	if err != nil {
		return Finding{}, fmt.Errorf("read %s: %w", f, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Finding{Value: 0, Detail: f + " is empty"}, nil
	}

	value, missing := readmeScore(data)
	detail := f + " covers all sections"
	if len(missing) > 0 {
		detail = f + " lacks " + strings.Join(missing, ", ")
	}
	return Finding{Value: value, Detail: detail}, nil
}

func checkDocsDir(_ context.Context, t *Target) (Finding, error) {
	for _, dir := range []string{"docs", "doc", "documentation", "website/docs"} {
		if t.Files.HasDir(dir) {
			return Found(true, dir+"/ directory", ""), nil
		}
	}
	if f, ok := firstFile(t, "mkdocs.yml", "mkdocs.yaml", "docusaurus.config.js", "docusaurus.config.ts", "book.toml", "conf.py", ".readthedocs.yaml", ".readthedocs.yml"); ok {
		return Found(true, "found "+f, ""), nil
	}
	return Found(false, "", "no docs directory or documentation site"), nil
}
