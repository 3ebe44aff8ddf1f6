package git

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Remote is a parsed git remote URL.
type Remote struct {
	Host  string
	Owner string // may contain slashes for nested groups (GitLab)
	Name  string
}

// FullName returns "owner/name".
func (r Remote) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoExists checks if a git repository exists at the given path.
func RepoExists(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

// RepoRoot returns the top-level directory of the checkout containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return out, nil
}

// RemoteURL returns the fetch URL of the named remote.
func RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return output(ctx, dir, "remote", "get-url", remote)
}

// CurrentBranch returns the checked-out branch, or "" on a detached HEAD.
// Unborn branches (no commits yet) are reported by name.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := output(ctx, dir, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// ParseRemote understands https, ssh:// and scp-style (git@host:owner/repo) URLs.
func ParseRemote(raw string) (Remote, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Remote{}, fmt.Errorf("empty remote URL")
	}

	var host, p string
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Remote{}, fmt.Errorf("invalid remote URL %q: %w", raw, err)
		}
		host = u.Hostname()
		p = u.Path
	} else {
		// scp-style: [user@]host:path
		at := strings.LastIndex(raw, "@")
		rest := raw[at+1:]
		h, after, ok := strings.Cut(rest, ":")
		if !ok {
			return Remote{}, fmt.Errorf("unrecognised remote URL %q", raw)
		}
		host = h
		p = after
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	i := strings.LastIndex(p, "/")
	if host == "" || i <= 0 || i == len(p)-1 {
		return Remote{}, fmt.Errorf("remote URL %q has no owner/repo path", raw)
	}
	return Remote{Host: strings.ToLower(host), Owner: p[:i], Name: p[i+1:]}, nil
}

func output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, stderr)
	}
	return strings.TrimSpace(string(out)), nil
}
