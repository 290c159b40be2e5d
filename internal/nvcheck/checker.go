package nvcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zig-devel/overseer/internal/execshell"
)

const (
	executorRequiredMessageConstant = "drift checker version tool executor not configured"
	driftErrorTemplateConstant      = "new upstream version available for %s:\n%s"
	configurationFlagConstant       = "-c"
	// ConfigurationFileName is the per-repository version-check configuration
	// expected at the mirror root.
	ConfigurationFileName = ".nvchecker.toml"
)

// ErrExecutorNotConfigured indicates the checker was constructed without a version tool executor.
var ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)

// DriftError reports that a repository's recorded version is behind upstream.
type DriftError struct {
	Repository string
	Report     string
}

// Error names the repository along with the comparison tool's report.
func (driftError DriftError) Error() string {
	return fmt.Sprintf(driftErrorTemplateConstant, driftError.Repository, driftError.Report)
}

// VersionToolExecutor exposes the version-check tool pair used for drift detection.
type VersionToolExecutor interface {
	ExecuteNvchecker(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteNvcmp(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Checker refreshes cached upstream version state inside a repository mirror
// and compares it against the versions recorded in the mirror's configuration.
type Checker struct {
	versionToolExecutor VersionToolExecutor
}

// NewChecker constructs a Checker backed by the provided executor.
func NewChecker(versionToolExecutor VersionToolExecutor) (*Checker, error) {
	if versionToolExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Checker{versionToolExecutor: versionToolExecutor}, nil
}

// Check runs the refresh tool followed by the comparison tool inside the
// mirror directory. A non-empty comparison report is returned as a DriftError
// carrying the repository name; tool failures propagate unchanged.
func (checker *Checker) Check(executionContext context.Context, repositoryName string, mirrorPath string) error {
	toolDetails := execshell.CommandDetails{
		Arguments:        []string{configurationFlagConstant, ConfigurationFileName},
		WorkingDirectory: mirrorPath,
	}

	if _, refreshError := checker.versionToolExecutor.ExecuteNvchecker(executionContext, toolDetails); refreshError != nil {
		return refreshError
	}

	comparisonResult, comparisonError := checker.versionToolExecutor.ExecuteNvcmp(executionContext, toolDetails)
	if comparisonError != nil {
		return comparisonError
	}

	comparisonReport := strings.TrimSpace(comparisonResult.StandardOutput)
	if len(comparisonReport) > 0 {
		return DriftError{Repository: repositoryName, Report: comparisonReport}
	}
	return nil
}
