package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/auth"
	"github.com/shhac/shiptea/internal/config"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
)

// session is everything a command needs once flags and config are resolved.
type session struct {
	ctx     context.Context
	cfg     *config.Config
	repoDir string

	labels  *i18n.Translator
	tracker analytics.Tracker
	tokens  auth.Tokens
	linked  *auth.Linked
	store   *conversation.Store
}

func (o *rootOptions) open(ctx context.Context, build BuildInfo) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log, err := logger.Setup(cfg.Log.File, level, build.Version)
	if err != nil {
		return nil, err
	}

	repoDir, err := filepath.Abs(o.repoDir)
	if err != nil {
		return nil, fmt.Errorf("invalid --repo %q: %w", o.repoDir, err)
	}
	scoped := log.WithValues("repo", repoDir)
	ctx = logger.WithLogger(ctx, &scoped)

	override, err := provider.ParseID(o.provider)
	if err != nil {
		return nil, fmt.Errorf("invalid --provider: %w", err)
	}
	if override == "" {
		override = cfg.ProviderOverride()
	}

	labels, err := i18n.New(resolveLocale(o.locale, cfg.UI.Locale, os.Getenv))
	if err != nil {
		return nil, err
	}

	if err := auth.LoadDotEnv(repoDir); err != nil {
		scoped.Info("ignoring unreadable .env", "error", err.Error())
	}
	tokens := auth.TokensFromEnv(os.Getenv)
	linked := auth.NewLinked(tokens)

	var tracker analytics.Tracker = analytics.Nop{}
	if cfg.Analytics.Enabled {
		tracker = analytics.NewLogTracker(scoped)
	}

	scoped.Info("session ready",
		"locale", labels.Locale().String(),
		"linked", len(linked.Providers()),
		"provider_override", string(override),
	)

	return &session{
		ctx:     ctx,
		cfg:     cfg,
		repoDir: repoDir,
		labels:  labels,
		tracker: tracker,
		tokens:  tokens,
		linked:  linked,
		store:   conversation.NewStore(repoDir, override),
	}, nil
}

func (s *session) verifyProviders(ctx context.Context) {
	auth.Verify(ctx, s.linked, s.tokens, map[provider.ID]auth.Verifier{
		provider.GitHub: auth.GitHubVerifier{},
	})
}

// resolveLocale picks the first non-empty of the flag, the config and the
// POSIX locale variables.
func resolveLocale(flag, configured string, getenv func(string) string) string {
	for _, v := range []string{flag, configured, getenv("LC_ALL"), getenv("LC_MESSAGES"), getenv("LANG")} {
		if v != "" {
			return v
		}
	}
	return ""
}

func defaultConfigHint() string {
	return config.DefaultConfigPath()
}
