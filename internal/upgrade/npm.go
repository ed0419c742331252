package upgrade

import (
	"context"
)

// NpmStrategy upgrades tools distributed as global npm packages.
type NpmStrategy struct {
	installerBase
}

// NewNpmStrategy builds an NpmStrategy for the install spec.
func NewNpmStrategy(spec InstallSpec, dependencies StrategyDependencies) NpmStrategy {
	return NpmStrategy{installerBase: newInstallerBase(spec, dependencies)}
}

// Install runs the configured npm install command.
func (strategy NpmStrategy) Install(executionContext context.Context) error {
	_, installError := strategy.runCommand(executionContext, strategy.spec.InstallCommand, true)
	return installError
}

// PostCheck confirms the tool's command resolves on PATH.
func (strategy NpmStrategy) PostCheck(executionContext context.Context) error {
	return strategy.verifyCommandAvailable(executionContext)
}
