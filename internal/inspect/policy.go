package inspect

import (
	"fmt"

	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	requiredDefaultBranchConstant = "main"

	policyViolationTemplateConstant = "repository %s violates policy: %s"

	defaultBranchExpectationTemplateConstant = "default branch must be %q, found %q"
	templateExpectationConstant              = "repository must not be a template"
	issuesExpectationConstant                = "issues must be enabled"
	wikiExpectationConstant                  = "wiki must be disabled"
	pagesExpectationConstant                 = "pages must be disabled"
	projectsExpectationConstant              = "projects must be disabled"
	discussionsExpectationConstant           = "discussions must be disabled"
)

// PolicyViolationError reports the first policy assertion a repository failed.
type PolicyViolationError struct {
	Repository  string
	Expectation string
}

// Error names the repository and the violated expectation.
func (violationError PolicyViolationError) Error() string {
	return fmt.Sprintf(policyViolationTemplateConstant, violationError.Repository, violationError.Expectation)
}

type policyAssertion struct {
	passes      func(record githubapi.RepositoryRecord) bool
	expectation func(record githubapi.RepositoryRecord) string
}

var orderedPolicyAssertions = []policyAssertion{
	{
		passes: func(record githubapi.RepositoryRecord) bool { return record.DefaultBranch == requiredDefaultBranchConstant },
		expectation: func(record githubapi.RepositoryRecord) string {
			return fmt.Sprintf(defaultBranchExpectationTemplateConstant, requiredDefaultBranchConstant, record.DefaultBranch)
		},
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return !record.IsTemplate },
		expectation: func(githubapi.RepositoryRecord) string { return templateExpectationConstant },
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return record.HasIssues },
		expectation: func(githubapi.RepositoryRecord) string { return issuesExpectationConstant },
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return !record.HasWiki },
		expectation: func(githubapi.RepositoryRecord) string { return wikiExpectationConstant },
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return !record.HasPages },
		expectation: func(githubapi.RepositoryRecord) string { return pagesExpectationConstant },
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return !record.HasProjects },
		expectation: func(githubapi.RepositoryRecord) string { return projectsExpectationConstant },
	},
	{
		passes:      func(record githubapi.RepositoryRecord) bool { return !record.HasDiscussions },
		expectation: func(githubapi.RepositoryRecord) string { return discussionsExpectationConstant },
	},
}

// EvaluatePolicy asserts the organization policy against one repository record.
// Assertions run in a fixed order and stop at the first failure, which is
// returned as a PolicyViolationError.
func EvaluatePolicy(record githubapi.RepositoryRecord) error {
	for _, assertion := range orderedPolicyAssertions {
		if assertion.passes(record) {
			continue
		}
		return PolicyViolationError{Repository: record.Name, Expectation: assertion.expectation(record)}
	}
	return nil
}
