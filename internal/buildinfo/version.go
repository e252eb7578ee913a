// Package buildinfo holds version metadata injected at build time:
//
//	go build -ldflags "-X github.com/silver2dream/repo-readiness/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String returns a one-line version description.
func String() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	s := "dprs " + Version
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		s += " (" + commit + ")"
	}
	if Date != "" {
		s += " built " + Date
	}
	return fmt.Sprintf("%s %s/%s", s, runtime.GOOS, runtime.GOARCH)
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
