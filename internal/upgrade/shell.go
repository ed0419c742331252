package upgrade

import (
	"context"
)

// ShellStrategy runs an arbitrary install command line, typically a
// download piped into a shell.
type ShellStrategy struct {
	installerBase
}

// NewShellStrategy builds a ShellStrategy for the install spec.
func NewShellStrategy(spec InstallSpec, dependencies StrategyDependencies) ShellStrategy {
	return ShellStrategy{installerBase: newInstallerBase(spec, dependencies)}
}

// Install runs the configured command line.
func (strategy ShellStrategy) Install(executionContext context.Context) error {
	_, installError := strategy.runCommand(executionContext, strategy.spec.InstallCommand, true)
	return installError
}

// PostCheck confirms the tool's command resolves on PATH.
func (strategy ShellStrategy) PostCheck(executionContext context.Context) error {
	return strategy.verifyCommandAvailable(executionContext)
}
