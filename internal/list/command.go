package list

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zig-devel/overseer/internal/githubapi"
	"github.com/zig-devel/overseer/internal/githubauth"
	"github.com/zig-devel/overseer/internal/repocache"
)

const (
	commandUseNameConstant          = "list"
	commandShortDescriptionConstant = "Print the organization's in-scope repositories"
	commandLongDescriptionConstant  = "list prints a table of the organization's public, non-archived repositories with their URLs, last update timestamps, and open issue counts. The repository directory is fetched once and served from the local cache afterwards."
	commandExampleConstant          = "overseer list --github-org zig-devel"

	organizationFlagNameConstant    = "github-org"
	organizationFlagUsageConstant   = "GitHub organization to enumerate"
	tokenFlagNameConstant           = "github-token"
	tokenFlagUsageConstant          = "Bearer credential for GitHub API calls"
	reposDirectoryFlagNameConstant  = "repos-dir"
	reposDirectoryFlagUsageConstant = "Root directory for the repository cache"
	cacheFileFlagNameConstant       = "repos-cache"
	cacheFileFlagUsageConstant      = "Explicit path to the repository cache file"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the list cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	GitHubHTTPClient      githubapi.HTTPClient
	RepositoryLister      RepositoryLister
	DirectoryCache        DirectoryCache
}

// Build constructs the cobra command for repository listings.
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

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
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
	cacheFilePath = resolveCacheFilePath(cacheFilePath, reposDirectory)

	logger := builder.resolveLogger()

	repositoryLister := builder.RepositoryLister
	if repositoryLister == nil {
		httpClient := builder.GitHubHTTPClient
		if httpClient == nil {
			httpClient = &http.Client{}
		}
		apiClient, clientError := githubapi.NewClient(logger, httpClient, githubapi.ClientConfiguration{BearerToken: githubToken})
		if clientError != nil {
			return clientError
		}
		repositoryLister = apiClient
	}

	directoryCache := builder.DirectoryCache
	if directoryCache == nil {
		fileCache, cacheError := repocache.NewDirectoryCache(cacheFilePath)
		if cacheError != nil {
			return cacheError
		}
		directoryCache = fileCache
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:           logger,
		RepositoryLister: repositoryLister,
		DirectoryCache:   directoryCache,
		OutputWriter:     command.OutOrStdout(),
	})
	if serviceError != nil {
		return serviceError
	}

	return service.Run(command.Context(), CommandOptions{Organization: organization, GitHubToken: githubToken})
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
