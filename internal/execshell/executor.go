package execshell

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultShellInterpreterConstant = "/bin/sh"
	shellCommandFlagConstant        = "-c"
	executingCommandMessageConstant = "executing command"
	completedCommandMessageConstant = "command completed"
	failedCommandMessageConstant    = "command could not be executed"
	rejectedCommandMessageConstant  = "command rejected by safety gate"
	logFieldCommandConstant         = "command"
	logFieldExecutionModeConstant   = "execution_mode"
	logFieldExitCodeConstant        = "exit_code"
	logFieldDeniedPatternConstant   = "denied_pattern"
	logFieldCheckExitStatusConstant = "check_exit_status"
	logFieldStandardErrorConstant   = "stderr"
	logFieldExecutableConstant      = "executable"
	logFieldArgumentCountConstant   = "argument_count"
)

// ExecutorConfiguration tunes the shell execution path.
type ExecutorConfiguration struct {
	ShellInterpreter string
	DeniedPatterns   []string
}

// ShellExecutor runs command lines, preferring direct process execution over a shell.
type ShellExecutor struct {
	logger           *zap.Logger
	runner           CommandRunner
	observer         CommandEventObserver
	guard            *SafetyGuard
	shellInterpreter string
}

// NewShellExecutor constructs an executor with the default shell and denylist.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithConfiguration(logger, runner, ExecutorConfiguration{}, nil)
}

// NewShellExecutorWithConfiguration constructs an executor with explicit configuration and an optional observer.
func NewShellExecutorWithConfiguration(logger *zap.Logger, runner CommandRunner, configuration ExecutorConfiguration, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}

	shellInterpreter := strings.TrimSpace(configuration.ShellInterpreter)
	if len(shellInterpreter) == 0 {
		shellInterpreter = defaultShellInterpreterConstant
	}

	return &ShellExecutor{
		logger:           logger,
		runner:           runner,
		observer:         observer,
		guard:            NewSafetyGuard(configuration.DeniedPatterns),
		shellInterpreter: shellInterpreter,
	}, nil
}

// Resolve classifies a command line and builds the process invocation without spawning it.
// Shell-bound command lines that match the denylist yield a CommandSafetyViolationError.
func (executor *ShellExecutor) Resolve(commandLine string) (ShellCommand, error) {
	trimmedCommandLine := strings.TrimSpace(commandLine)
	if len(trimmedCommandLine) == 0 {
		return ShellCommand{}, ErrEmptyCommand
	}

	if RequiresShell(trimmedCommandLine) {
		if validationError := executor.guard.Validate(trimmedCommandLine); validationError != nil {
			return ShellCommand{}, validationError
		}
		return ShellCommand{
			Name:        CommandName(executor.shellInterpreter),
			Details:     CommandDetails{Arguments: []string{shellCommandFlagConstant, trimmedCommandLine}},
			Mode:        ExecutionModeShell,
			CommandLine: trimmedCommandLine,
		}, nil
	}

	arguments, splitError := SplitArguments(trimmedCommandLine)
	if splitError != nil {
		return ShellCommand{}, splitError
	}

	return ShellCommand{
		Name:        CommandName(arguments[0]),
		Details:     CommandDetails{Arguments: arguments[1:]},
		Mode:        ExecutionModeDirect,
		CommandLine: trimmedCommandLine,
	}, nil
}

// Execute runs the command line and returns its standard output.
// When check is set a non-zero exit status yields a CommandFailedError carrying standard error.
func (executor *ShellExecutor) Execute(executionContext context.Context, commandLine string, check bool) (string, error) {
	command, resolveError := executor.Resolve(commandLine)
	if resolveError != nil {
		var violation CommandSafetyViolationError
		if errors.As(resolveError, &violation) {
			executor.logger.Warn(
				rejectedCommandMessageConstant,
				zap.String(logFieldCommandConstant, violation.CommandLine),
				zap.String(logFieldDeniedPatternConstant, violation.Pattern),
			)
			executor.observer.CommandRejected(violation.CommandLine, violation)
		}
		return "", resolveError
	}

	executor.logger.Debug(
		executingCommandMessageConstant,
		zap.String(logFieldCommandConstant, command.CommandLine),
		zap.String(logFieldExecutionModeConstant, string(command.Mode)),
		zap.String(logFieldExecutableConstant, string(command.Name)),
		zap.Int(logFieldArgumentCountConstant, len(command.Details.Arguments)),
		zap.Bool(logFieldCheckExitStatusConstant, check),
	)
	executor.observer.CommandStarted(command)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Debug(
			failedCommandMessageConstant,
			zap.String(logFieldCommandConstant, command.CommandLine),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return "", CommandExecutionError{Command: command, Cause: runError}
	}

	executor.logger.Debug(
		completedCommandMessageConstant,
		zap.String(logFieldCommandConstant, command.CommandLine),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
	)
	executor.observer.CommandCompleted(command, result)

	if check && result.ExitCode != 0 {
		return "", CommandFailedError{Command: command, Result: result}
	}

	return result.StandardOutput, nil
}

// ShellInterpreter reports the interpreter used for shell-bound command lines.
func (executor *ShellExecutor) ShellInterpreter() string {
	return executor.shellInterpreter
}
