package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/ui"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/utils"
)

const (
	toolsCommandUseConstant              = "tools"
	toolsCommandShortDescriptionConstant = "List registered tools and their installers"
	toolsCommandLongDescriptionConstant  = "tools prints every registry entry with the executable it provides, the installer strategy that would upgrade it, and its npm package when known."
	toolsUnexpectedArgumentsConstant     = "tools does not accept positional arguments"
	toolsListedMessageConstant           = "tools listed"
	logFieldToolCountConstant            = "tool_count"
)

// ToolsCommandBuilder assembles the tools listing command.
type ToolsCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	HomeExpander          *utils.HomeExpander
}

// Build constructs the tools command.
func (builder *ToolsCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:   toolsCommandUseConstant,
		Short: toolsCommandShortDescriptionConstant,
		Long:  toolsCommandLongDescriptionConstant,
		RunE:  builder.run,
	}, nil
}

func (builder *ToolsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(toolsUnexpectedArgumentsConstant)
	}

	configuration := resolveConfigurationFrom(builder.ConfigurationProvider)
	toolRegistry, registryError := loadToolRegistry(configuration, builder.HomeExpander)
	if registryError != nil {
		return fmt.Errorf(registryLoadFailedTemplateConstant, registryError)
	}

	selector := upgrade.NewDefaultSelector()
	definitions := toolRegistry.Tools()
	rows := make([]ui.ToolRow, 0, len(definitions))
	for _, definition := range definitions {
		row := ui.ToolRow{Key: definition.Key, CommandName: definition.CommandName}
		if definition.HasInstallCommand() {
			row.Strategy = string(definition.StrategyKind())
			if len(row.Strategy) == 0 {
				row.Strategy = string(selector.Select(definition.InstallCommand))
			}
		}
		if packageName, found := definition.NpmPackage(); found {
			row.Package = packageName
		}
		rows = append(rows, row)
	}

	ui.NewUpgradeSummaryPrinter(command.OutOrStdout()).PrintToolRows(rows)
	resolveLoggerFrom(builder.LoggerProvider).Debug(toolsListedMessageConstant, zap.Int(logFieldToolCountConstant, len(rows)))
	return nil
}
