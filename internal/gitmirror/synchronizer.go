package gitmirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zig-devel/overseer/internal/execshell"
	"github.com/zig-devel/overseer/internal/githubapi"
)

const (
	executorRequiredMessageConstant      = "mirror synchronizer git executor not configured"
	mirrorRootRequiredMessageConstant    = "mirror root directory required"
	synchronizationErrorTemplateConstant = "synchronizing mirror for %s during %s: %s"

	cloneSubcommandConstant = "clone"
	fetchSubcommandConstant = "fetch"
	resetSubcommandConstant = "reset"
	cleanSubcommandConstant = "clean"

	cloneDepthFlagConstant          = "--depth"
	cloneDepthValueConstant         = "1"
	cloneBranchFlagConstant         = "--branch"
	quietFlagConstant               = "-q"
	originRemoteNameConstant        = "origin"
	hardResetFlagConstant           = "--hard"
	remoteReferenceTemplateConstant = "origin/%s"
	cleanUntrackedFlagConstant      = "-xd"
	cleanForceFlagConstant          = "--force"
)

// SynchronizationStep names the mirror operation that failed.
type SynchronizationStep string

// Mirror synchronization steps.
const (
	StepClone SynchronizationStep = SynchronizationStep(cloneSubcommandConstant)
	StepFetch SynchronizationStep = SynchronizationStep(fetchSubcommandConstant)
	StepReset SynchronizationStep = SynchronizationStep(resetSubcommandConstant)
	StepClean SynchronizationStep = SynchronizationStep(cleanSubcommandConstant)
)

// Sentinel errors reported during synchronizer construction.
var (
	// ErrExecutorNotConfigured indicates the synchronizer was constructed without a git executor.
	ErrExecutorNotConfigured = errors.New(executorRequiredMessageConstant)
	// ErrMirrorRootRequired indicates the synchronizer was constructed without a mirror root.
	ErrMirrorRootRequired = errors.New(mirrorRootRequiredMessageConstant)
)

// SynchronizationError reports a failed mirror operation for one repository.
type SynchronizationError struct {
	Repository string
	Step       SynchronizationStep
	Cause      error
}

// Error describes the failed synchronization step.
func (synchronizationError SynchronizationError) Error() string {
	return fmt.Sprintf(synchronizationErrorTemplateConstant, synchronizationError.Repository, synchronizationError.Step, synchronizationError.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (synchronizationError SynchronizationError) Unwrap() error {
	return synchronizationError.Cause
}

// GitExecutor exposes the subset of shell execution used for mirror maintenance.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Synchronizer converges per-repository working trees onto the remote default
// branch tip, creating shallow clones on first sight and re-synchronizing
// existing mirrors on every later run.
type Synchronizer struct {
	gitExecutor GitExecutor
	mirrorRoot  string
}

// NewSynchronizer constructs a Synchronizer rooted at the provided directory.
func NewSynchronizer(gitExecutor GitExecutor, mirrorRoot string) (*Synchronizer, error) {
	if gitExecutor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if len(mirrorRoot) == 0 {
		return nil, ErrMirrorRootRequired
	}
	return &Synchronizer{gitExecutor: gitExecutor, mirrorRoot: mirrorRoot}, nil
}

// MirrorPath returns the working tree location for a repository name. The path
// is a pure function of the mirror root and the name.
func (synchronizer *Synchronizer) MirrorPath(repositoryName string) string {
	return filepath.Join(synchronizer.mirrorRoot, repositoryName)
}

// Sync guarantees the repository's mirror matches the remote default branch
// exactly, regardless of prior local state, and returns the mirror path.
//
// Existing mirrors go through fetch, hard reset, and forced clean in that
// order so the reset targets the freshly fetched tip and the clean removes
// artifacts left behind by earlier tool invocations.
func (synchronizer *Synchronizer) Sync(executionContext context.Context, record githubapi.RepositoryRecord) (string, error) {
	mirrorPath := synchronizer.MirrorPath(record.Name)

	if _, statError := os.Stat(mirrorPath); statError != nil {
		if !errors.Is(statError, os.ErrNotExist) {
			return "", SynchronizationError{Repository: record.Name, Step: StepClone, Cause: statError}
		}
		if cloneError := synchronizer.cloneMirror(executionContext, record, mirrorPath); cloneError != nil {
			return "", cloneError
		}
		return mirrorPath, nil
	}

	if updateError := synchronizer.updateMirror(executionContext, record, mirrorPath); updateError != nil {
		return "", updateError
	}
	return mirrorPath, nil
}

func (synchronizer *Synchronizer) cloneMirror(executionContext context.Context, record githubapi.RepositoryRecord, mirrorPath string) error {
	cloneDetails := execshell.CommandDetails{
		Arguments: []string{
			cloneSubcommandConstant,
			cloneDepthFlagConstant, cloneDepthValueConstant,
			cloneBranchFlagConstant, record.DefaultBranch,
			record.CloneURL,
			mirrorPath,
		},
	}
	if _, cloneError := synchronizer.gitExecutor.ExecuteGit(executionContext, cloneDetails); cloneError != nil {
		return SynchronizationError{Repository: record.Name, Step: StepClone, Cause: cloneError}
	}
	return nil
}

func (synchronizer *Synchronizer) updateMirror(executionContext context.Context, record githubapi.RepositoryRecord, mirrorPath string) error {
	orderedSteps := []struct {
		step      SynchronizationStep
		arguments []string
	}{
		{
			step:      StepFetch,
			arguments: []string{fetchSubcommandConstant, quietFlagConstant, originRemoteNameConstant},
		},
		{
			step:      StepReset,
			arguments: []string{resetSubcommandConstant, quietFlagConstant, hardResetFlagConstant, fmt.Sprintf(remoteReferenceTemplateConstant, record.DefaultBranch)},
		},
		{
			step:      StepClean,
			arguments: []string{cleanSubcommandConstant, quietFlagConstant, cleanUntrackedFlagConstant, cleanForceFlagConstant},
		},
	}

	for _, synchronizationStep := range orderedSteps {
		stepDetails := execshell.CommandDetails{
			Arguments:        synchronizationStep.arguments,
			WorkingDirectory: mirrorPath,
		}
		if _, stepError := synchronizer.gitExecutor.ExecuteGit(executionContext, stepDetails); stepError != nil {
			return SynchronizationError{Repository: record.Name, Step: synchronizationStep.step, Cause: stepError}
		}
	}

	return nil
}
