// Package auth works out which code-hosting providers the user has linked.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/go-github/v66/github"
	"github.com/joho/godotenv"

	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
)

// ErrUnauthorized means the provider rejected the token.
var ErrUnauthorized = errors.New("token rejected by provider")

// tokenEnv lists the environment variables checked per provider, in order.
var tokenEnv = map[provider.ID][]string{
	provider.GitHub:    {"GITHUB_TOKEN", "GH_TOKEN"},
	provider.GitLab:    {"GITLAB_TOKEN"},
	provider.Bitbucket: {"BITBUCKET_TOKEN"},
}

// Tokens maps each linked provider to its access token.
type Tokens map[provider.ID]string

// LoadDotEnv loads dir/.env into the process environment if it exists.
// Variables that are already set keep their values.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// TokensFromEnv collects provider tokens using getenv (usually os.Getenv).
func TokensFromEnv(getenv func(string) string) Tokens {
	tokens := Tokens{}
	for id, names := range tokenEnv {
		for _, name := range names {
			if v := getenv(name); v != "" {
				tokens[id] = v
				break
			}
		}
	}
	return tokens
}

// Linked is the set of providers the user is authenticated with.
// Safe for concurrent use.
type Linked struct {
	mu  sync.RWMutex
	ids []provider.ID
}

// NewLinked returns the providers present in tokens, in provider.Known order.
func NewLinked(tokens Tokens) *Linked {
	l := &Linked{}
	for _, id := range provider.Known {
		if tokens[id] != "" {
			l.ids = append(l.ids, id)
		}
	}
	return l
}

// Providers returns a copy of the linked provider list. It may be empty.
func (l *Linked) Providers() []provider.ID {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.ids)
}

// Remove unlinks id.
func (l *Linked) Remove(id provider.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = slices.DeleteFunc(l.ids, func(x provider.ID) bool { return x == id })
}

// Verifier checks a token against a provider's API.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// GitHubVerifier authenticates a token by fetching the current user.
type GitHubVerifier struct {
	HTTPClient *http.Client
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
}

func (v GitHubVerifier) Verify(ctx context.Context, token string) error {
	client := github.NewClient(v.HTTPClient).WithAuthToken(token)
	if v.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(v.BaseURL, v.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL: %w", err)
		}
	}
	_, _, err := client.Users.Get(ctx, "")
	if err == nil {
		return nil
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil &&
		(errResp.Response.StatusCode == http.StatusUnauthorized || errResp.Response.StatusCode == http.StatusForbidden) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, errResp.Message)
	}
	return fmt.Errorf("failed to verify GitHub token: %w", err)
}

// Verify unlinks providers whose token the verifier rejects. Transport
// failures keep the provider linked. Providers without a verifier are trusted.
func Verify(ctx context.Context, linked *Linked, tokens Tokens, verifiers map[provider.ID]Verifier) {
	log := logger.FromContext(ctx)
	for _, id := range linked.Providers() {
		v, ok := verifiers[id]
		if !ok {
			continue
		}
		err := v.Verify(ctx, tokens[id])
		switch {
		case err == nil:
			log.V(1).Info("provider token verified", "provider", id)
		case errors.Is(err, ErrUnauthorized):
			log.Info("provider token rejected, unlinking", "provider", id, "error", err.Error())
			linked.Remove(id)
		default:
			log.Info("could not verify provider token", "provider", id, "error", err.Error())
		}
	}
}
