// Package cli wires configuration, logging and the UI into the shiptea command.
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/notify"
	"github.com/shhac/shiptea/internal/ui"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("shiptea %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	repoDir    string
	configPath string
	locale     string
	provider   string
}

// Execute runs the root command.
func Execute(ctx context.Context, build BuildInfo) error {
	return NewRootCommand(build).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &rootOptions{}
	var sess *session

	cmd := &cobra.Command{
		Use:           "shiptea",
		Short:         "Chat with a coding agent and ship its changes to your code host",
		Long:          "shiptea runs a coding agent against the current checkout and offers one-key actions to push the result to a branch or open a pull/merge request.",
		Version:       build.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			sess, err = opts.open(cmd.Context(), build)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(sess)
		},
	}
	cmd.SetVersionTemplate(build.String() + "\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.repoDir, "repo", ".", "repository checkout to work in")
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+defaultConfigHint()+")")
	flags.StringVar(&opts.locale, "locale", "", "UI language, e.g. de or ja (default from config or $LANG)")
	flags.StringVar(&opts.provider, "provider", "", "force the code host: github, gitlab or bitbucket")

	cmd.AddCommand(
		newSuggestionsCommand(func() *session { return sess }),
		newVersionCommand(build),
		newConfigCommand(opts),
	)
	return cmd
}

func runTUI(s *session) error {
	log := logger.FromContext(s.ctx)

	var svc ui.AgentService
	if path, err := agent.Find(s.cfg.Agent.Path); err != nil {
		log.Info("agent CLI unavailable", "error", err.Error())
	} else {
		log.Info("using agent CLI", "path", path)
		svc = agent.NewService(agent.NewCLIExecutor(path), agent.Options{
			Timeout:      s.cfg.AgentTimeout(),
			MaxTurns:     s.cfg.Agent.MaxTurns,
			AllowedTools: s.cfg.Agent.AllowedTools,
		})
	}

	opts := ui.AppOptions{
		Agent:         svc,
		Conversations: s.store,
		Providers:     s.linked,
		Labels:        s.labels,
		Tracker:       s.tracker,
		RepoDir:       s.repoDir,
		PollInterval:  s.cfg.PollInterval(),
		MarkdownStyle: s.cfg.UI.MarkdownStyle,
	}
	if s.cfg.UI.Notify {
		opts.Notify = notify.New("shiptea").Send
	}
	if s.cfg.Providers.Verify && len(s.linked.Providers()) > 0 {
		opts.VerifyProviders = s.verifyProviders
	}

	p := tea.NewProgram(ui.NewApp(s.ctx, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(s.ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI exited with error: %w", err)
	}
	return nil
}

func newVersionCommand(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print shiptea version",
		Args:  cobra.NoArgs,
		// Skips the root setup: no config or log file needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), build.String())
			return nil
		},
	}
}
