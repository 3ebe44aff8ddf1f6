package provider

import "fmt"

// Terms holds the provider-specific wording used in agent instructions.
type Terms struct {
	Noun        string // "pull request" or "merge request"
	Short       string // "PR" or "MR"
	DisplayName string

	PushToBranch string
	CreatePR     string
	PushToPR     string
}

type wording struct {
	noun, short, name string
}

// Matching is exact on the identifier. Anything not listed, including the
// empty ID, reads as GitHub.
var wordings = map[ID]wording{
	GitLab:    {noun: "merge request", short: "MR", name: "GitLab"},
	Bitbucket: {noun: "pull request", short: "PR", name: "Bitbucket"},
}

var fallbackWording = wording{noun: "pull request", short: "PR", name: "GitHub"}

// TermsFor returns the wording and instruction prompts for a provider.
func TermsFor(id ID) Terms {
	w, ok := wordings[id]
	if !ok {
		w = fallbackWording
	}
	return Terms{
		Noun:        w.noun,
		Short:       w.short,
		DisplayName: w.name,
		PushToBranch: fmt.Sprintf("Please push the changes to a remote branch on %s, but do NOT create a %s. "+
			"Check your current branch name first - if it's main, master, deploy, or another common default branch name, "+
			"create a new branch with a descriptive name related to your changes. "+
			"Otherwise, use the exact SAME branch name as the one you are currently on.", w.name, w.noun),
		CreatePR: fmt.Sprintf("Please push the changes to %s and open a %s. "+
			"If you're on a default branch (e.g., main, master, deploy), create a new branch with a descriptive name otherwise use the current branch. "+
			"If a %s template exists in the repository, please follow it when creating the %s description.", w.name, w.noun, w.noun, w.short),
		PushToPR: fmt.Sprintf("Please push the latest changes to the existing %s.", w.noun),
	}
}
