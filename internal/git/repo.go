// Package git provides read-only git queries used to identify a repository
// and to inspect tracked files.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	// ErrGitNotFound is returned when the git executable is not on PATH.
	ErrGitNotFound = errors.New("git executable not found")
	// ErrNotRepository is returned when dir is not inside a work tree.
	ErrNotRepository = errors.New("not a git repository")
)

// run executes git in dir and returns trimmed stdout.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := runRaw(ctx, dir, args...)
	return strings.TrimSpace(string(out)), err
}

func runRaw(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, ErrGitNotFound
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	msg := strings.TrimSpace(stderr.String())
	if strings.Contains(strings.ToLower(msg), "not a git repository") {
		return nil, ErrNotRepository
	}
	return out, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
}

// IsRepository reports whether dir is inside a git work tree.
func IsRepository(ctx context.Context, dir string) bool {
	out, err := run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// RemoteURL returns the URL configured for remote.
func RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return run(ctx, dir, "config", "--get", "remote."+remote+".url")
}

// CurrentBranch returns the current branch, or "HEAD" when detached.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

// HeadCommit returns the full hash of HEAD.
func HeadCommit(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "HEAD")
}

// LsFiles returns the tracked files relative to dir, slash-separated.
func LsFiles(ctx context.Context, dir string) ([]string, error) {
	out, err := runRaw(ctx, dir, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range bytes.Split(out, []byte{0}) {
		if len(f) > 0 {
			files = append(files, string(f))
		}
	}
	return files, nil
}

// CheckIgnore returns the subset of paths that git ignores.
func CheckIgnore(ctx context.Context, dir string, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := append([]string{"check-ignore", "--no-index", "--"}, paths...)
	out, err := run(ctx, dir, args...)
	if err != nil {
		// Exit status 1 means none of the paths are ignored.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Identity names a repository in reports and history.
type Identity struct {
	ID     string `json:"id"`
	Remote string `json:"remote,omitempty"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
}

// Identify resolves the identity of the repository at dir. The id is the
// normalized origin URL when one is configured, else the directory name.
// Git failures are not errors: the fields they would fill stay empty.
func Identify(ctx context.Context, dir string) Identity {
	id := Identity{ID: dirName(dir)}
	if !IsRepository(ctx, dir) {
		return id
	}
	if url, err := RemoteURL(ctx, dir, "origin"); err == nil && url != "" {
		id.Remote = url
		if n := NormalizeRemote(url); n != "" {
			id.ID = n
		}
	}
	if b, err := CurrentBranch(ctx, dir); err == nil {
		id.Branch = b
	}
	if c, err := HeadCommit(ctx, dir); err == nil {
		id.Commit = c
	}
	return id
}

// NormalizeRemote turns a remote URL into host/owner/name. It returns ""
// for local paths and URLs it cannot parse.
//
//	git@github.com:acme/widget.git        -> github.com/acme/widget
//	https://user@github.com/acme/widget   -> github.com/acme/widget
//	ssh://git@gitlab.com:2222/a/b/c.git   -> gitlab.com/a/b/c
func NormalizeRemote(url string) string {
	u := strings.TrimSpace(url)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")

	var host, rest string
	switch {
	case strings.Contains(u, "://"):
		scheme, after, _ := strings.Cut(u, "://")
		if scheme == "file" {
			return ""
		}
		hostPart, p, ok := strings.Cut(after, "/")
		if !ok {
			return ""
		}
		host, rest = hostPart, p
	case strings.Contains(u, ":") && !filepath.IsAbs(u) && !strings.HasPrefix(u, "."):
		// scp-like syntax: [user@]host:path
		hostPart, p, _ := strings.Cut(u, ":")
		host, rest = hostPart, p
	default:
		return ""
	}

	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	rest = strings.Trim(rest, "/")
	if host == "" || rest == "" {
		return ""
	}
	return strings.ToLower(host) + "/" + rest
}

func dirName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}
