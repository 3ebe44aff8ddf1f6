package provider

import (
	"fmt"
	"strings"
)

// ID identifies a code-hosting provider.
type ID string

const (
	GitHub    ID = "github"
	GitLab    ID = "gitlab"
	Bitbucket ID = "bitbucket"
)

// Known lists the providers shiptea recognises, in display order.
var Known = []ID{GitHub, GitLab, Bitbucket}

// ParseID normalises user or config input into an ID.
// An empty string parses to the empty ID (unset).
func ParseID(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, id := range Known {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (want github, gitlab or bitbucket)", s)
}

// FromHost maps a git remote host to a provider.
func FromHost(host string) (ID, bool) {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "github"):
		return GitHub, true
	case strings.Contains(host, "gitlab"):
		return GitLab, true
	case strings.Contains(host, "bitbucket"):
		return Bitbucket, true
	default:
		return "", false
	}
}
