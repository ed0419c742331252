package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/execshell"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/registry"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/ui"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/utils"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/versions"
)

const (
	upgradeCommandUseConstant               = "upgrade [tool...]"
	upgradeCommandShortDescriptionConstant  = "Upgrade AI coding assistant CLIs"
	upgradeCommandLongDescriptionConstant   = "upgrade installs the latest release of the named tools, or of every registered tool with --all, rolling back failed attempts."
	allFlagNameConstant                     = "all"
	allFlagDescriptionConstant              = "Upgrade every tool in the registry that declares an install command"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Log the commands that would run without executing them"
	timeoutFlagNameConstant                 = "timeout"
	timeoutFlagDescriptionConstant          = "Abort remaining upgrades after this duration (0 disables)"
	missingToolSelectionMessageConstant     = "specify at least one tool or pass --all"
	conflictingToolSelectionMessageConstant = "--all cannot be combined with explicit tool names"
	registryLoadFailedTemplateConstant      = "unable to load tool registry: %w"
	executorCreationFailedTemplateConstant  = "unable to create command executor: %w"
	serviceCreationFailedTemplateConstant   = "unable to create upgrade service: %w"
	versionReaderFailedTemplateConstant     = "unable to create version reader: %w"
	toolSkippedMessageConstant              = "skipping tool without install command"
	logFieldToolConstant                    = "tool"
)

// UpgradeCommandBuilder assembles the upgrade command.
type UpgradeCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	CommandRunnerProvider        CommandRunnerProvider
	HomeExpander                 *utils.HomeExpander
}

type upgradeOptions struct {
	toolKeys   []string
	upgradeAll bool
	dryRun     bool
	timeout    time.Duration
}

// Build constructs the upgrade command.
func (builder *UpgradeCommandBuilder) Build() (*cobra.Command, error) {
	upgradeCommand := &cobra.Command{
		Use:   upgradeCommandUseConstant,
		Short: upgradeCommandShortDescriptionConstant,
		Long:  upgradeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	upgradeCommand.Flags().Bool(allFlagNameConstant, false, allFlagDescriptionConstant)
	upgradeCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	upgradeCommand.Flags().Duration(timeoutFlagNameConstant, 0, timeoutFlagDescriptionConstant)

	return upgradeCommand, nil
}

func (builder *UpgradeCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := resolveConfigurationFrom(builder.ConfigurationProvider)
	options, optionsError := builder.parseOptions(command, arguments, configuration)
	if optionsError != nil {
		return optionsError
	}

	logger := resolveLoggerFrom(builder.LoggerProvider)

	toolRegistry, registryError := loadToolRegistry(configuration, builder.HomeExpander)
	if registryError != nil {
		return fmt.Errorf(registryLoadFailedTemplateConstant, registryError)
	}

	items, itemsError := builder.buildItems(toolRegistry, options, logger)
	if itemsError != nil {
		return itemsError
	}

	executor, executorError := execshell.NewShellExecutorWithConfiguration(
		logger,
		builder.resolveCommandRunner(),
		execshell.ExecutorConfiguration{
			ShellInterpreter: configuration.Shell,
			DeniedPatterns:   configuration.DeniedPatterns,
		},
		builder.resolveCommandEventObserver(),
	)
	if executorError != nil {
		return fmt.Errorf(executorCreationFailedTemplateConstant, executorError)
	}

	service, serviceError := upgrade.NewService(upgrade.ServiceDependencies{Executor: executor, Logger: logger})
	if serviceError != nil {
		return fmt.Errorf(serviceCreationFailedTemplateConstant, serviceError)
	}

	versionReader, versionReaderError := versions.NewReader(executor, logger)
	if versionReaderError != nil {
		return fmt.Errorf(versionReaderFailedTemplateConstant, versionReaderError)
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	if options.timeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, options.timeout)
		defer cancel()
	}

	report := upgrade.NewBatchRunnerWithVersions(service, versionReader, logger).Run(executionContext, items)
	ui.NewUpgradeSummaryPrinter(command.OutOrStdout()).PrintReport(report, options.dryRun)

	return report.Err()
}

func (builder *UpgradeCommandBuilder) parseOptions(command *cobra.Command, arguments []string, configuration UpgradeConfiguration) (upgradeOptions, error) {
	upgradeAll, allFlagError := command.Flags().GetBool(allFlagNameConstant)
	if allFlagError != nil {
		return upgradeOptions{}, allFlagError
	}

	toolKeys := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if trimmedArgument := strings.TrimSpace(argument); len(trimmedArgument) > 0 {
			toolKeys = append(toolKeys, trimmedArgument)
		}
	}
	switch {
	case upgradeAll && len(toolKeys) > 0:
		return upgradeOptions{}, errors.New(conflictingToolSelectionMessageConstant)
	case !upgradeAll && len(toolKeys) == 0:
		return upgradeOptions{}, errors.New(missingToolSelectionMessageConstant)
	}

	dryRunValue := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		flagDryRunValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return upgradeOptions{}, dryRunFlagError
		}
		dryRunValue = flagDryRunValue
	}

	timeoutValue := configuration.Timeout
	if command.Flags().Changed(timeoutFlagNameConstant) {
		flagTimeoutValue, timeoutFlagError := command.Flags().GetDuration(timeoutFlagNameConstant)
		if timeoutFlagError != nil {
			return upgradeOptions{}, timeoutFlagError
		}
		timeoutValue = flagTimeoutValue
	}

	return upgradeOptions{
		toolKeys:   toolKeys,
		upgradeAll: upgradeAll,
		dryRun:     dryRunValue,
		timeout:    timeoutValue,
	}, nil
}

func (builder *UpgradeCommandBuilder) buildItems(toolRegistry *registry.Registry, options upgradeOptions, logger *zap.Logger) ([]upgrade.BatchItem, error) {
	if options.upgradeAll {
		items := make([]upgrade.BatchItem, 0, len(toolRegistry.Keys()))
		for _, definition := range toolRegistry.Tools() {
			if !definition.HasInstallCommand() {
				logger.Debug(toolSkippedMessageConstant, zap.String(logFieldToolConstant, definition.Key))
				continue
			}
			spec, specError := definition.InstallSpec(options.dryRun)
			if specError != nil {
				return nil, specError
			}
			items = append(items, upgrade.BatchItem{Spec: spec, Kind: definition.StrategyKind()})
		}
		return items, nil
	}

	items := make([]upgrade.BatchItem, 0, len(options.toolKeys))
	for _, toolKey := range options.toolKeys {
		definition, lookupError := toolRegistry.Lookup(toolKey)
		if lookupError != nil {
			return nil, lookupError
		}
		spec, specError := definition.InstallSpec(options.dryRun)
		if specError != nil {
			return nil, specError
		}
		items = append(items, upgrade.BatchItem{Spec: spec, Kind: definition.StrategyKind()})
	}
	return items, nil
}

func (builder *UpgradeCommandBuilder) resolveCommandRunner() execshell.CommandRunner {
	if builder.CommandRunnerProvider != nil {
		if runner := builder.CommandRunnerProvider(); runner != nil {
			return runner
		}
	}
	return execshell.NewOSCommandRunner()
}

func (builder *UpgradeCommandBuilder) resolveCommandEventObserver() execshell.CommandEventObserver {
	if builder.HumanReadableLoggingProvider == nil || !builder.HumanReadableLoggingProvider() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(resolveLoggerFrom(builder.ConsoleLoggerProvider))
}
