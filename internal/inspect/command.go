package inspect

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/execshell"
	"github.com/zig-devel/overseer/internal/githubapi"
	"github.com/zig-devel/overseer/internal/githubauth"
	flagutils "github.com/zig-devel/overseer/internal/utils/flags"
)

const (
	commandUseNameConstant          = "inspect"
	commandShortDescriptionConstant = "Audit every organization repository against policy and version drift"
	commandLongDescriptionConstant  = "inspect enumerates the organization's repositories, caches the directory locally, and verifies each in-scope repository: required settings, a synchronized local mirror of the default branch, and upstream version drift. The run stops at the first violation."
	commandExampleConstant          = "overseer inspect --github-org zig-devel --no-check-updates"

	organizationFlagNameConstant  = "github-org"
	organizationFlagUsageConstant = "GitHub organization to enumerate"
	tokenFlagNameConstant         = "github-token"
	tokenFlagUsageConstant        = "Bearer credential for GitHub API calls"

	invalidateCacheFlagNameConstant  = "invalidate-cache"
	invalidateCacheFlagUsageConstant = "Delete the repository cache and all mirrors before running"
	noCheckUpdatesFlagNameConstant   = "no-check-updates"
	noCheckUpdatesFlagUsageConstant  = "Skip the upstream version drift check"
	noCheckSettingsFlagNameConstant  = "no-check-repository-settings"
	noCheckSettingsFlagUsageConstant = "Skip repository settings assertions"

	reposDirectoryFlagNameConstant  = "repos-dir"
	reposDirectoryFlagUsageConstant = "Root directory for the repository cache and mirrors"
	cacheFileFlagNameConstant       = "repos-cache"
	cacheFileFlagUsageConstant      = "Explicit path to the repository cache file"

	emptyFlagShorthandConstant = ""
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the inspect cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	CommandRunner                execshell.CommandRunner
	GitHubHTTPClient             githubapi.HTTPClient
	RepositoryLister             RepositoryLister
	DirectoryCache               DirectoryCache
	MirrorSynchronizer           MirrorSynchronizer
	DriftChecker                 DriftChecker

	invalidateCacheFlag bool
	noCheckUpdatesFlag  bool
	noCheckSettingsFlag bool
}

// Build constructs the cobra command for the inspection pipeline.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseNameConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
	}

	command.Flags().String(organizationFlagNameConstant, "", organizationFlagUsageConstant)
	command.Flags().String(tokenFlagNameConstant, "", tokenFlagUsageConstant)
	command.Flags().String(reposDirectoryFlagNameConstant, "", reposDirectoryFlagUsageConstant)
	command.Flags().String(cacheFileFlagNameConstant, "", cacheFileFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.invalidateCacheFlag, invalidateCacheFlagNameConstant, emptyFlagShorthandConstant, false, invalidateCacheFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.noCheckUpdatesFlag, noCheckUpdatesFlagNameConstant, emptyFlagShorthandConstant, false, noCheckUpdatesFlagUsageConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.noCheckSettingsFlag, noCheckSettingsFlagNameConstant, emptyFlagShorthandConstant, false, noCheckSettingsFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	options := builder.resolveOptions(command)

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, executorError := ResolveShellExecutor(builder.CommandRunner, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	repositoryLister, listerError := ResolveRepositoryLister(builder.RepositoryLister, builder.GitHubHTTPClient, logger, options.GitHubToken)
	if listerError != nil {
		return listerError
	}

	directoryCache, cacheError := ResolveDirectoryCache(builder.DirectoryCache, options.CacheFilePath)
	if cacheError != nil {
		return cacheError
	}

	mirrorSynchronizer, synchronizerError := ResolveMirrorSynchronizer(builder.MirrorSynchronizer, shellExecutor, options.ReposDirectory)
	if synchronizerError != nil {
		return synchronizerError
	}

	driftChecker, checkerError := ResolveDriftChecker(builder.DriftChecker, shellExecutor)
	if checkerError != nil {
		return checkerError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:             logger,
		RepositoryLister:   repositoryLister,
		DirectoryCache:     directoryCache,
		MirrorSynchronizer: mirrorSynchronizer,
		DriftChecker:       driftChecker,
	})
	if serviceError != nil {
		return serviceError
	}

	return service.Run(command.Context(), options)
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) CommandOptions {
	configuration := builder.resolveConfiguration()

	organization := configuration.Organization
	if flagValue, flagError := command.Flags().GetString(organizationFlagNameConstant); flagError == nil && command.Flags().Changed(organizationFlagNameConstant) {
		organization = strings.TrimSpace(flagValue)
	}

	githubToken := configuration.GitHubToken
	if flagValue, flagError := command.Flags().GetString(tokenFlagNameConstant); flagError == nil && command.Flags().Changed(tokenFlagNameConstant) {
		githubToken = strings.TrimSpace(flagValue)
	}
	if len(githubToken) == 0 {
		if environmentToken, tokenFound := githubauth.ResolveToken(nil); tokenFound {
			githubToken = environmentToken
		}
	}

	reposDirectory := configuration.ReposDirectory
	if flagValue, flagError := command.Flags().GetString(reposDirectoryFlagNameConstant); flagError == nil && command.Flags().Changed(reposDirectoryFlagNameConstant) {
		trimmedValue := strings.TrimSpace(flagValue)
		if len(trimmedValue) > 0 {
			reposDirectory = trimmedValue
		}
	}

	cacheFilePath := configuration.CacheFilePath
	if flagValue, flagError := command.Flags().GetString(cacheFileFlagNameConstant); flagError == nil && command.Flags().Changed(cacheFileFlagNameConstant) {
		cacheFilePath = strings.TrimSpace(flagValue)
	}
	cacheFilePath = ResolveCacheFilePath(cacheFilePath, reposDirectory)

	checkUpdates := configuration.CheckUpdates
	if command.Flags().Changed(noCheckUpdatesFlagNameConstant) {
		checkUpdates = !builder.noCheckUpdatesFlag
	}
	checkRepositorySettings := configuration.CheckRepositorySettings
	if command.Flags().Changed(noCheckSettingsFlagNameConstant) {
		checkRepositorySettings = !builder.noCheckSettingsFlag
	}

	invalidateCache := builder.invalidateCacheFlag && command.Flags().Changed(invalidateCacheFlagNameConstant)

	return CommandOptions{
		Organization:            organization,
		GitHubToken:             githubToken,
		ReposDirectory:          reposDirectory,
		CacheFilePath:           cacheFilePath,
		InvalidateCache:         invalidateCache,
		CheckUpdates:            checkUpdates,
		CheckRepositorySettings: checkRepositorySettings,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
