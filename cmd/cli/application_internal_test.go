package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	overrideConfigurationContentConstant = "common:\n  log_level: warn\n  log_format: structured\ncommands:\n  inspect:\n    github_org: acme-tools\n    repos_dir: /tmp/acme-cache\n    check_updates: false\n"
	overrideConfigurationFileNameConstant = "config.yaml"
)

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredCommandNames := make([]string, 0)
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredCommandNames = append(registeredCommandNames, registeredCommand.Name())
	}
	require.Contains(testInstance, registeredCommandNames, "inspect")
	require.Contains(testInstance, registeredCommandNames, "list")

	persistentFlagNames := []string{configFileFlagNameConstant, logLevelFlagNameConstant, logFormatFlagNameConstant}
	for _, persistentFlagName := range persistentFlagNames {
		require.NotNil(testInstance, application.rootCommand.PersistentFlags().Lookup(persistentFlagName), persistentFlagName)
	}
}

func TestInitializeConfigurationAppliesEmbeddedDefaults(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.True(testInstance, application.humanReadableLoggingEnabled())

	inspectConfiguration := application.configuration.Commands.Inspect
	require.Equal(testInstance, "zig-devel", inspectConfiguration.Organization)
	require.Equal(testInstance, ".overseer_cache", inspectConfiguration.ReposDirectory)
	require.True(testInstance, inspectConfiguration.CheckUpdates)
	require.True(testInstance, inspectConfiguration.CheckRepositorySettings)

	require.Equal(testInstance, "zig-devel", application.configuration.Commands.List.Organization)
}

func TestInitializeConfigurationHonorsLogFlags(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, "structured"))
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", application.configuration.Common.LogFormat)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestInitializeConfigurationMergesConfigurationFile(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), overrideConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(overrideConfigurationContentConstant), 0o644))

	application := NewApplication()
	application.configurationFilePath = configurationPath

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)

	inspectConfiguration := application.configuration.Commands.Inspect
	require.Equal(testInstance, "acme-tools", inspectConfiguration.Organization)
	require.Equal(testInstance, "/tmp/acme-cache", inspectConfiguration.ReposDirectory)
	require.False(testInstance, inspectConfiguration.CheckUpdates)
	require.True(testInstance, inspectConfiguration.CheckRepositorySettings)
}
