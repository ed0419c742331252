package execshell

// CommandEventObserver receives lifecycle notifications for command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that a process is about to be spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted notifies observers that the process exited and supplies the result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
	// CommandRejected reports a command line refused before any process was spawned.
	CommandRejected(commandLine string, violation CommandSafetyViolationError)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

func (noopCommandEventObserver) CommandRejected(string, CommandSafetyViolationError) {}
