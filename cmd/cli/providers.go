package cli

import (
	"go.uber.org/zap"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/execshell"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/registry"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/utils"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current upgrade configuration.
type ConfigurationProvider func() UpgradeConfiguration

// CommandRunnerProvider supplies the process runner used by the shell executor.
type CommandRunnerProvider func() execshell.CommandRunner

func resolveLoggerFrom(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfigurationFrom(provider ConfigurationProvider) UpgradeConfiguration {
	if provider == nil {
		return UpgradeConfiguration{}.Sanitize()
	}
	return provider().Sanitize()
}

// loadToolRegistry returns the bundled registry unless a tools file is configured.
func loadToolRegistry(configuration UpgradeConfiguration, expander *utils.HomeExpander) (*registry.Registry, error) {
	if len(configuration.ToolsFile) == 0 {
		return registry.Default()
	}
	return registry.Load(expander.Expand(configuration.ToolsFile))
}
