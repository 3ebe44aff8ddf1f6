package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
	"github.com/shhac/shiptea/internal/ui"
	"github.com/spf13/cobra"
)

type suggestionJSON struct {
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

type suggestionsReport struct {
	Provider    string           `json:"provider"`
	Repository  string           `json:"repository"`
	Branch      string           `json:"branch"`
	Linked      []provider.ID    `json:"linked_providers"`
	ReviewOpen  bool             `json:"review_open"`
	Suggestions []suggestionJSON `json:"suggestions"`
}

func newSuggestionsCommand(sess func() *session) *cobra.Command {
	var reviewOpen, asJSON bool

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Print the action suggestions for the current checkout",
		Long: "Prints the push and pull/merge request actions the chat would offer for the current checkout. " +
			"Nothing is sent to the agent.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := sess()
			if err := s.store.Refresh(s.ctx); err != nil {
				logger.FromContext(s.ctx).Info("no conversation detected", "error", err.Error())
			}

			a := ui.NewActionSuggestions(nil, s.linked, s.store, s.labels, &analytics.Recorder{})
			if reviewOpen {
				// Creating the request is what moves the component to its open state.
				a.Click(1)
			}

			report := buildReport(s.store.ActiveConversation(), s.linked.Providers(), &a)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			writeText(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reviewOpen, "review-open", false, "show the actions offered once a pull/merge request exists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func buildReport(conv *conversation.Conversation, linked []provider.ID, a *ui.ActionSuggestions) suggestionsReport {
	report := suggestionsReport{
		Linked:      linked,
		ReviewOpen:  a.HasPullRequest(),
		Suggestions: []suggestionJSON{},
	}
	if conv != nil {
		report.Provider = provider.TermsFor(conv.GitProvider).DisplayName
		report.Repository = conv.SelectedRepository
		report.Branch = conv.SelectedBranch
	}
	for _, item := range a.Suggestions() {
		report.Suggestions = append(report.Suggestions, suggestionJSON{
			Label:       item.Suggestion.Label,
			Instruction: item.Suggestion.Value,
		})
	}
	return report
}

func writeJSON(w io.Writer, report suggestionsReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}
	return nil
}

func writeText(w io.Writer, report suggestionsReport) {
	if len(report.Suggestions) == 0 {
		switch {
		case len(report.Linked) == 0:
			fmt.Fprintln(w, "No suggestions: no provider token found (set GITHUB_TOKEN, GITLAB_TOKEN or BITBUCKET_TOKEN).")
		default:
			fmt.Fprintln(w, "No suggestions: no repository detected (is there an origin remote?).")
		}
		return
	}
	fmt.Fprintf(w, "%s · %s", report.Provider, report.Repository)
	if report.Branch != "" {
		fmt.Fprintf(w, " @ %s", report.Branch)
	}
	fmt.Fprintln(w)
	for i, s := range report.Suggestions {
		fmt.Fprintf(w, "\n[%d] %s\n    %s\n", i+1, s.Label, s.Instruction)
	}
}
