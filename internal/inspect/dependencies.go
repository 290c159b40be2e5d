package inspect

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/execshell"
	"github.com/zig-devel/overseer/internal/githubapi"
	"github.com/zig-devel/overseer/internal/gitmirror"
	"github.com/zig-devel/overseer/internal/nvcheck"
	"github.com/zig-devel/overseer/internal/repocache"
	"github.com/zig-devel/overseer/internal/ui"
)

// RepositoryLister enumerates an organization's repositories page by page.
type RepositoryLister interface {
	ListOrganizationRepositories(executionContext context.Context, organization string, handlePage githubapi.PageHandler) error
}

// DirectoryCache persists repository records one JSON object per line.
type DirectoryCache interface {
	FilePath() string
	Exists() bool
	AppendRecords(rawRecords []json.RawMessage) error
	LoadRecords() ([]githubapi.RepositoryRecord, error)
	Invalidate() error
}

// MirrorSynchronizer converges a repository's local mirror onto the remote tip.
type MirrorSynchronizer interface {
	Sync(executionContext context.Context, record githubapi.RepositoryRecord) (string, error)
}

// DriftChecker runs the version drift check inside a synchronized mirror.
type DriftChecker interface {
	Check(executionContext context.Context, repositoryName string, mirrorPath string) error
}

// ResolveShellExecutor returns the provided command runner wrapped in a shell
// executor, or constructs an OS-backed default.
func ResolveShellExecutor(commandRunner execshell.CommandRunner, logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

// ResolveRepositoryLister returns the provided lister or an HTTP-backed default.
func ResolveRepositoryLister(existing RepositoryLister, httpClient githubapi.HTTPClient, logger *zap.Logger, bearerToken string) (RepositoryLister, error) {
	if existing != nil {
		return existing, nil
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return githubapi.NewClient(logger, httpClient, githubapi.ClientConfiguration{BearerToken: bearerToken})
}

// ResolveDirectoryCache returns the provided cache or a file-backed default at the given path.
func ResolveDirectoryCache(existing DirectoryCache, cacheFilePath string) (DirectoryCache, error) {
	if existing != nil {
		return existing, nil
	}
	return repocache.NewDirectoryCache(cacheFilePath)
}

// ResolveMirrorSynchronizer returns the provided synchronizer or constructs one from the executor.
func ResolveMirrorSynchronizer(existing MirrorSynchronizer, gitExecutor gitmirror.GitExecutor, mirrorRoot string) (MirrorSynchronizer, error) {
	if existing != nil {
		return existing, nil
	}
	return gitmirror.NewSynchronizer(gitExecutor, mirrorRoot)
}

// ResolveDriftChecker returns the provided checker or constructs one from the executor.
func ResolveDriftChecker(existing DriftChecker, versionToolExecutor nvcheck.VersionToolExecutor) (DriftChecker, error) {
	if existing != nil {
		return existing, nil
	}
	return nvcheck.NewChecker(versionToolExecutor)
}
