package list

import (
	"path/filepath"
	"strings"
)

const (
	defaultOrganizationConstant   = "zig-devel"
	defaultReposDirectoryConstant = ".overseer_cache"
	cacheFileNameConstant         = "repos.jsonl"

	configurationKeySeparatorConstant      = "."
	organizationConfigurationKeyConstant   = "github_org"
	tokenConfigurationKeyConstant          = "github_token"
	reposDirectoryConfigurationKeyConstant = "repos_dir"
	cacheFilePathConfigurationKeyConstant  = "repos_cache"
)

// CommandConfiguration captures persistent settings for the list command.
type CommandConfiguration struct {
	Organization   string `mapstructure:"github_org"`
	GitHubToken    string `mapstructure:"github_token"`
	ReposDirectory string `mapstructure:"repos_dir"`
	CacheFilePath  string `mapstructure:"repos_cache"`
}

// DefaultCommandConfiguration returns baseline configuration values for the list command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Organization:   defaultOrganizationConstant,
		GitHubToken:    "",
		ReposDirectory: defaultReposDirectoryConstant,
		CacheFilePath:  "",
	}
}

// DefaultConfigurationValues produces Viper defaults for the list command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + organizationConfigurationKeyConstant:   defaults.Organization,
		rootKey + configurationKeySeparatorConstant + tokenConfigurationKeyConstant:          defaults.GitHubToken,
		rootKey + configurationKeySeparatorConstant + reposDirectoryConfigurationKeyConstant: defaults.ReposDirectory,
		rootKey + configurationKeySeparatorConstant + cacheFilePathConfigurationKeyConstant:  defaults.CacheFilePath,
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Organization = strings.TrimSpace(configuration.Organization)
	if len(sanitized.Organization) == 0 {
		sanitized.Organization = defaultOrganizationConstant
	}
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	sanitized.ReposDirectory = strings.TrimSpace(configuration.ReposDirectory)
	if len(sanitized.ReposDirectory) == 0 {
		sanitized.ReposDirectory = defaultReposDirectoryConstant
	}
	sanitized.CacheFilePath = strings.TrimSpace(configuration.CacheFilePath)
	return sanitized
}

func resolveCacheFilePath(configuredPath string, reposDirectory string) string {
	trimmedPath := strings.TrimSpace(configuredPath)
	if len(trimmedPath) > 0 {
		return trimmedPath
	}
	return filepath.Join(reposDirectory, cacheFileNameConstant)
}
