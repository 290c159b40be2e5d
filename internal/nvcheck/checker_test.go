package nvcheck_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zig-devel/overseer/internal/execshell"
	"github.com/zig-devel/overseer/internal/nvcheck"
)

const (
	checkedRepositoryNameConstant = "toolbox"
	checkedMirrorPathConstant     = "cache/toolbox"
	driftReportConstant           = "zig 0.13.0 -> 0.14.1\n"
)

type recordedToolInvocation struct {
	toolName         string
	arguments        []string
	workingDirectory string
}

type scriptedVersionToolExecutor struct {
	invocations      []recordedToolInvocation
	refreshError     error
	comparisonOutput string
	comparisonError  error
}

func (executor *scriptedVersionToolExecutor) ExecuteNvchecker(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, recordedToolInvocation{
		toolName:         string(execshell.CommandNvchecker),
		arguments:        append([]string{}, details.Arguments...),
		workingDirectory: details.WorkingDirectory,
	})
	return execshell.ExecutionResult{}, executor.refreshError
}

func (executor *scriptedVersionToolExecutor) ExecuteNvcmp(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, recordedToolInvocation{
		toolName:         string(execshell.CommandNvcmp),
		arguments:        append([]string{}, details.Arguments...),
		workingDirectory: details.WorkingDirectory,
	})
	return execshell.ExecutionResult{StandardOutput: executor.comparisonOutput}, executor.comparisonError
}

func TestNewCheckerRequiresExecutor(testInstance *testing.T) {
	checker, constructionError := nvcheck.NewChecker(nil)
	require.ErrorIs(testInstance, constructionError, nvcheck.ErrExecutorNotConfigured)
	require.Nil(testInstance, checker)
}

func TestCheckRunsRefreshThenComparisonInMirror(testInstance *testing.T) {
	versionToolExecutor := &scriptedVersionToolExecutor{}
	checker, constructionError := nvcheck.NewChecker(versionToolExecutor)
	require.NoError(testInstance, constructionError)

	checkError := checker.Check(context.Background(), checkedRepositoryNameConstant, checkedMirrorPathConstant)
	require.NoError(testInstance, checkError)

	require.Len(testInstance, versionToolExecutor.invocations, 2)
	require.Equal(testInstance, string(execshell.CommandNvchecker), versionToolExecutor.invocations[0].toolName)
	require.Equal(testInstance, string(execshell.CommandNvcmp), versionToolExecutor.invocations[1].toolName)
	for _, invocation := range versionToolExecutor.invocations {
		require.Equal(testInstance, []string{"-c", nvcheck.ConfigurationFileName}, invocation.arguments)
		require.Equal(testInstance, checkedMirrorPathConstant, invocation.workingDirectory)
	}
}

func TestCheckReportsDriftOnComparisonOutput(testInstance *testing.T) {
	versionToolExecutor := &scriptedVersionToolExecutor{comparisonOutput: driftReportConstant}
	checker, constructionError := nvcheck.NewChecker(versionToolExecutor)
	require.NoError(testInstance, constructionError)

	checkError := checker.Check(context.Background(), checkedRepositoryNameConstant, checkedMirrorPathConstant)
	require.Error(testInstance, checkError)

	var driftError nvcheck.DriftError
	require.ErrorAs(testInstance, checkError, &driftError)
	require.Equal(testInstance, checkedRepositoryNameConstant, driftError.Repository)
	require.Equal(testInstance, "zig 0.13.0 -> 0.14.1", driftError.Report)
	require.Contains(testInstance, checkError.Error(), checkedRepositoryNameConstant)
}

func TestCheckPropagatesRefreshFailureWithoutComparing(testInstance *testing.T) {
	refreshFailure := errors.New("configuration file missing")
	versionToolExecutor := &scriptedVersionToolExecutor{refreshError: refreshFailure}
	checker, constructionError := nvcheck.NewChecker(versionToolExecutor)
	require.NoError(testInstance, constructionError)

	checkError := checker.Check(context.Background(), checkedRepositoryNameConstant, checkedMirrorPathConstant)
	require.ErrorIs(testInstance, checkError, refreshFailure)
	require.Len(testInstance, versionToolExecutor.invocations, 1)
}

func TestCheckPropagatesComparisonFailure(testInstance *testing.T) {
	comparisonFailure := errors.New("comparison tool exited 1")
	versionToolExecutor := &scriptedVersionToolExecutor{comparisonError: comparisonFailure}
	checker, constructionError := nvcheck.NewChecker(versionToolExecutor)
	require.NoError(testInstance, constructionError)

	checkError := checker.Check(context.Background(), checkedRepositoryNameConstant, checkedMirrorPathConstant)
	require.ErrorIs(testInstance, checkError, comparisonFailure)
	require.Len(testInstance, versionToolExecutor.invocations, 2)
}
