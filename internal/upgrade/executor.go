package upgrade

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	pathLookupCommandConstant          = "which"
	logMessageDryRunCommandConstant    = "dry run: would run command"
	logMessageCommandResolvedConstant  = "command resolved on PATH"
	logFieldCommandConstant            = "command"
	logFieldPathConstant               = "path"
	commandNotFoundReasonConstant      = "command %q not found on PATH"
	commandNotFoundEmptyReasonConstant = "command %q resolved to an empty path"
)

// CommandExecutor runs a single command line and returns its standard output.
// When check is true a non-zero exit status is reported as an error.
type CommandExecutor interface {
	Execute(executionContext context.Context, commandLine string, check bool) (string, error)
}

// installerBase carries what every concrete strategy shares.
type installerBase struct {
	DefaultHooks
	spec     InstallSpec
	executor CommandExecutor
	logger   *zap.Logger
}

func newInstallerBase(spec InstallSpec, dependencies StrategyDependencies) installerBase {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String(logFieldToolConstant, spec.Name))
	return installerBase{
		DefaultHooks: NewDefaultHooks(logger),
		spec:         spec,
		executor:     dependencies.Executor,
		logger:       logger,
	}
}

// Spec returns the install spec the strategy was built for.
func (base installerBase) Spec() InstallSpec {
	return base.spec
}

// runCommand executes the command line unless the install spec requests a dry run.
func (base installerBase) runCommand(executionContext context.Context, commandLine string, check bool) (string, error) {
	if base.spec.DryRun {
		base.logger.Info(logMessageDryRunCommandConstant, zap.String(logFieldCommandConstant, commandLine))
		return "", nil
	}
	if base.executor == nil {
		return "", ErrExecutorNotConfigured
	}
	return base.executor.Execute(executionContext, commandLine, check)
}

// verifyCommandAvailable confirms the install spec command name resolves on PATH.
func (base installerBase) verifyCommandAvailable(executionContext context.Context) error {
	commandName := strings.TrimSpace(base.spec.CommandName)
	if len(commandName) == 0 {
		return nil
	}
	lookupOutput, lookupError := base.runCommand(executionContext, pathLookupCommandConstant+" "+commandName, true)
	if lookupError != nil {
		return PostCheckError{Name: base.spec.Name, Reason: fmt.Sprintf(commandNotFoundReasonConstant, commandName), Cause: lookupError}
	}
	resolvedPath := strings.TrimSpace(lookupOutput)
	if len(resolvedPath) == 0 && !base.spec.DryRun {
		return PostCheckError{Name: base.spec.Name, Reason: fmt.Sprintf(commandNotFoundEmptyReasonConstant, commandName)}
	}
	base.logger.Debug(logMessageCommandResolvedConstant, zap.String(logFieldCommandConstant, commandName), zap.String(logFieldPathConstant, resolvedPath))
	return nil
}
