package gitmirror_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zig-devel/overseer/internal/execshell"
	"github.com/zig-devel/overseer/internal/githubapi"
	"github.com/zig-devel/overseer/internal/gitmirror"
)

const (
	missingExecutorTestCaseNameConstant   = "missing_executor"
	missingMirrorRootTestCaseNameConstant = "missing_mirror_root"
	repositoryNameConstant                = "toolbox"
	cloneURLConstant                      = "https://github.com/zig-devel/toolbox.git"
	defaultBranchNameConstant             = "main"
)

type recordedGitInvocation struct {
	arguments        []string
	workingDirectory string
}

type recordingGitExecutor struct {
	invocations   []recordedGitInvocation
	failuresAfter int
	failureError  error
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, recordedGitInvocation{
		arguments:        append([]string{}, details.Arguments...),
		workingDirectory: details.WorkingDirectory,
	})
	if executor.failureError != nil && len(executor.invocations) > executor.failuresAfter {
		return execshell.ExecutionResult{}, executor.failureError
	}
	return execshell.ExecutionResult{}, nil
}

func sampleRepositoryRecord() githubapi.RepositoryRecord {
	return githubapi.RepositoryRecord{
		Name:          repositoryNameConstant,
		CloneURL:      cloneURLConstant,
		DefaultBranch: defaultBranchNameConstant,
	}
}

func TestNewSynchronizerValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		gitExecutor   gitmirror.GitExecutor
		mirrorRoot    string
		expectedError error
	}{
		{
			name:          missingExecutorTestCaseNameConstant,
			gitExecutor:   nil,
			mirrorRoot:    "mirrors",
			expectedError: gitmirror.ErrExecutorNotConfigured,
		},
		{
			name:          missingMirrorRootTestCaseNameConstant,
			gitExecutor:   &recordingGitExecutor{},
			mirrorRoot:    "",
			expectedError: gitmirror.ErrMirrorRootRequired,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			synchronizer, constructionError := gitmirror.NewSynchronizer(testCase.gitExecutor, testCase.mirrorRoot)
			require.ErrorIs(subtestInstance, constructionError, testCase.expectedError)
			require.Nil(subtestInstance, synchronizer)
		})
	}
}

func TestMirrorPathJoinsRootAndName(testInstance *testing.T) {
	synchronizer, constructionError := gitmirror.NewSynchronizer(&recordingGitExecutor{}, filepath.Join("cache", "repos"))
	require.NoError(testInstance, constructionError)
	require.Equal(testInstance, filepath.Join("cache", "repos", repositoryNameConstant), synchronizer.MirrorPath(repositoryNameConstant))
}

func TestSyncClonesMissingMirror(testInstance *testing.T) {
	mirrorRoot := testInstance.TempDir()
	gitExecutor := &recordingGitExecutor{}
	synchronizer, constructionError := gitmirror.NewSynchronizer(gitExecutor, mirrorRoot)
	require.NoError(testInstance, constructionError)

	mirrorPath, syncError := synchronizer.Sync(context.Background(), sampleRepositoryRecord())
	require.NoError(testInstance, syncError)
	require.Equal(testInstance, filepath.Join(mirrorRoot, repositoryNameConstant), mirrorPath)

	require.Len(testInstance, gitExecutor.invocations, 1)
	require.Equal(testInstance, []string{
		"clone",
		"--depth", "1",
		"--branch", defaultBranchNameConstant,
		cloneURLConstant,
		mirrorPath,
	}, gitExecutor.invocations[0].arguments)
	require.Empty(testInstance, gitExecutor.invocations[0].workingDirectory)
}

func TestSyncUpdatesExistingMirrorInOrder(testInstance *testing.T) {
	mirrorRoot := testInstance.TempDir()
	mirrorPath := filepath.Join(mirrorRoot, repositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(mirrorPath, 0o755))

	gitExecutor := &recordingGitExecutor{}
	synchronizer, constructionError := gitmirror.NewSynchronizer(gitExecutor, mirrorRoot)
	require.NoError(testInstance, constructionError)

	returnedPath, syncError := synchronizer.Sync(context.Background(), sampleRepositoryRecord())
	require.NoError(testInstance, syncError)
	require.Equal(testInstance, mirrorPath, returnedPath)

	require.Len(testInstance, gitExecutor.invocations, 3)
	require.Equal(testInstance, []string{"fetch", "-q", "origin"}, gitExecutor.invocations[0].arguments)
	require.Equal(testInstance, []string{"reset", "-q", "--hard", "origin/main"}, gitExecutor.invocations[1].arguments)
	require.Equal(testInstance, []string{"clean", "-q", "-xd", "--force"}, gitExecutor.invocations[2].arguments)
	for _, invocation := range gitExecutor.invocations {
		require.Equal(testInstance, mirrorPath, invocation.workingDirectory)
	}
}

func TestSyncRepeatsIdenticalSequenceOnEveryRun(testInstance *testing.T) {
	mirrorRoot := testInstance.TempDir()
	mirrorPath := filepath.Join(mirrorRoot, repositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(mirrorPath, 0o755))

	gitExecutor := &recordingGitExecutor{}
	synchronizer, constructionError := gitmirror.NewSynchronizer(gitExecutor, mirrorRoot)
	require.NoError(testInstance, constructionError)

	_, firstSyncError := synchronizer.Sync(context.Background(), sampleRepositoryRecord())
	require.NoError(testInstance, firstSyncError)
	_, secondSyncError := synchronizer.Sync(context.Background(), sampleRepositoryRecord())
	require.NoError(testInstance, secondSyncError)

	require.Len(testInstance, gitExecutor.invocations, 6)
	for invocationIndex := 0; invocationIndex < 3; invocationIndex++ {
		require.Equal(testInstance, gitExecutor.invocations[invocationIndex].arguments, gitExecutor.invocations[invocationIndex+3].arguments)
	}
}

func TestSyncReportsFailedStep(testInstance *testing.T) {
	mirrorRoot := testInstance.TempDir()
	mirrorPath := filepath.Join(mirrorRoot, repositoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(mirrorPath, 0o755))

	executionFailure := errors.New("remote unreachable")
	gitExecutor := &recordingGitExecutor{failuresAfter: 1, failureError: executionFailure}
	synchronizer, constructionError := gitmirror.NewSynchronizer(gitExecutor, mirrorRoot)
	require.NoError(testInstance, constructionError)

	_, syncError := synchronizer.Sync(context.Background(), sampleRepositoryRecord())
	require.Error(testInstance, syncError)

	var synchronizationError gitmirror.SynchronizationError
	require.ErrorAs(testInstance, syncError, &synchronizationError)
	require.Equal(testInstance, repositoryNameConstant, synchronizationError.Repository)
	require.Equal(testInstance, gitmirror.StepReset, synchronizationError.Step)
	require.ErrorIs(testInstance, syncError, executionFailure)

	require.Len(testInstance, gitExecutor.invocations, 2)
}
