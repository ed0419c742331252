package execshell

import "context"

// CommandName identifies the executable spawned for a command.
type CommandName string

// ExecutionMode describes how a command line reaches the operating system.
type ExecutionMode string

// Supported execution modes.
const (
	ExecutionModeDirect ExecutionMode = ExecutionMode("direct")
	ExecutionModeShell  ExecutionMode = ExecutionMode("shell")
)

// CommandDetails describes the arguments and process attributes of a command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand is a fully resolved process invocation.
type ShellCommand struct {
	Name        CommandName
	Details     CommandDetails
	Mode        ExecutionMode
	CommandLine string
}

// ExecutionResult captures the buffered output and exit status of a process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner spawns a resolved command and waits for it to exit.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
