package cli

import (
	"strings"
	"time"
)

const (
	upgradeConfigurationKeyConstant        = "upgrade"
	upgradeToolsFileConfigKeyConstant      = upgradeConfigurationKeyConstant + ".tools_file"
	upgradeDryRunConfigKeyConstant         = upgradeConfigurationKeyConstant + ".dry_run"
	upgradeTimeoutConfigKeyConstant        = upgradeConfigurationKeyConstant + ".timeout"
	upgradeShellConfigKeyConstant          = upgradeConfigurationKeyConstant + ".shell"
	upgradeDeniedPatternsConfigKeyConstant = upgradeConfigurationKeyConstant + ".denied_patterns"
	legacyToolsFileEnvironmentNameConstant = "CODE_ASSISTANT_MANAGER_TOOLS_FILE"
	defaultShellInterpreterValueConstant   = "/bin/sh"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Upgrade UpgradeConfiguration           `mapstructure:"upgrade"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// UpgradeConfiguration stores settings for the upgrade and tools commands.
type UpgradeConfiguration struct {
	ToolsFile      string        `mapstructure:"tools_file"`
	DryRun         bool          `mapstructure:"dry_run"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Shell          string        `mapstructure:"shell"`
	DeniedPatterns []string      `mapstructure:"denied_patterns"`
}

// DefaultUpgradeConfigurationValues supplies viper defaults for the upgrade section.
func DefaultUpgradeConfigurationValues() map[string]any {
	return map[string]any{
		upgradeToolsFileConfigKeyConstant:      "",
		upgradeDryRunConfigKeyConstant:         false,
		upgradeTimeoutConfigKeyConstant:        time.Duration(0),
		upgradeShellConfigKeyConstant:          defaultShellInterpreterValueConstant,
		upgradeDeniedPatternsConfigKeyConstant: []string{},
	}
}

// Sanitize trims configured values and removes empty denied patterns.
func (configuration UpgradeConfiguration) Sanitize() UpgradeConfiguration {
	sanitized := configuration
	sanitized.ToolsFile = strings.TrimSpace(configuration.ToolsFile)
	sanitized.Shell = strings.TrimSpace(configuration.Shell)
	if len(sanitized.Shell) == 0 {
		sanitized.Shell = defaultShellInterpreterValueConstant
	}
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	sanitizedPatterns := make([]string, 0, len(configuration.DeniedPatterns))
	for _, pattern := range configuration.DeniedPatterns {
		if len(strings.TrimSpace(pattern)) == 0 {
			continue
		}
		sanitizedPatterns = append(sanitizedPatterns, pattern)
	}
	if len(sanitizedPatterns) == 0 {
		sanitizedPatterns = nil
	}
	sanitized.DeniedPatterns = sanitizedPatterns
	return sanitized
}
