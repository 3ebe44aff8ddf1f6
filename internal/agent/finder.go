package agent

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultBinary is the agent CLI looked up on PATH.
const DefaultBinary = "claude"

// Find locates the agent CLI. A configured path wins; otherwise PATH and
// then common install locations are searched.
func Find(configured string) (string, error) {
	if configured != "" {
		if info, err := os.Stat(configured); err == nil && !info.IsDir() {
			return configured, nil
		}
		if p, err := exec.LookPath(configured); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("agent CLI not found at %s", configured)
	}

	if p, err := exec.LookPath(DefaultBinary); err == nil {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	candidates := []string{
		filepath.Join(home, ".local", "bin", DefaultBinary),
		filepath.Join(home, ".claude", "local", DefaultBinary),
		"/usr/local/bin/" + DefaultBinary,
		"/opt/homebrew/bin/" + DefaultBinary,
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	return "", fmt.Errorf("agent CLI not found: ensure '%s' is installed and on your PATH", DefaultBinary)
}
