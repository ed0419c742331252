package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant        = "execshell logger not configured"
	commandRunnerNotConfiguredMessageConstant = "execshell command runner not configured"
	emptyCommandMessageConstant               = "command line must not be empty"
	safetyViolationTemplateConstant           = "refusing to run %q: matched denied pattern %q"
	commandFailedTemplateConstant             = "%s failed with exit code %d"
	commandFailedWithErrorTemplateConstant    = "%s failed with exit code %d: %s"
	commandExecutionTemplateConstant          = "%s could not be executed: %v"
	commandSplitTemplateConstant              = "unable to split %q into arguments: %v"
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrEmptyCommand indicates a blank command line was supplied.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
)

// CommandSafetyViolationError reports a shell-bound command rejected by the denylist.
type CommandSafetyViolationError struct {
	CommandLine string
	Pattern     string
}

// Error describes the rejected command and the pattern it matched.
func (violation CommandSafetyViolationError) Error() string {
	return fmt.Sprintf(safetyViolationTemplateConstant, violation.CommandLine, violation.Pattern)
}

// CommandFailedError reports a process that exited with a non-zero status.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error includes the captured standard error when present.
func (failure CommandFailedError) Error() string {
	label := describeCommand(failure.Command)
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, label, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithErrorTemplateConstant, label, failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionTemplateConstant, describeCommand(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandSplitError reports a command line whose quoting could not be parsed.
type CommandSplitError struct {
	CommandLine string
	Cause       error
}

// Error describes the parsing failure.
func (splitError CommandSplitError) Error() string {
	return fmt.Sprintf(commandSplitTemplateConstant, splitError.CommandLine, splitError.Cause)
}

// Unwrap exposes the underlying cause.
func (splitError CommandSplitError) Unwrap() error {
	return splitError.Cause
}

func describeCommand(command ShellCommand) string {
	if len(command.CommandLine) > 0 {
		return command.CommandLine
	}
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	return strings.Join(commandParts, " ")
}
