package githubapi

import "strings"

const hiddenRepositoryNamePrefixConstant = "."

// RepositoryRecord mirrors the repository metadata returned by the GitHub
// organization listing endpoint. Records are immutable once fetched; the
// directory cache persists the API's own serialization of each record.
type RepositoryRecord struct {
	Name string `json:"name"`

	Private    bool `json:"private"`
	Archived   bool `json:"archived"`
	IsTemplate bool `json:"is_template"`

	CloneURL      string `json:"clone_url"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`

	HasIssues      bool `json:"has_issues"`
	HasWiki        bool `json:"has_wiki"`
	HasPages       bool `json:"has_pages"`
	HasProjects    bool `json:"has_projects"`
	HasDiscussions bool `json:"has_discussions"`

	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	OpenIssuesCount int    `json:"open_issues_count"`
}

// InScope reports whether the repository participates in organization checks.
// Dot-prefixed, private, and archived repositories are infrastructure or
// retired and are skipped before any policy or mirror work happens.
func (record RepositoryRecord) InScope() bool {
	if strings.HasPrefix(record.Name, hiddenRepositoryNamePrefixConstant) {
		return false
	}
	if record.Private {
		return false
	}
	if record.Archived {
		return false
	}
	return true
}
