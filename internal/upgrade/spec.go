package upgrade

import (
	"errors"
	"strings"
)

const (
	toolNameRequiredMessageConstant       = "install spec requires a tool name"
	installCommandRequiredMessageConstant = "install spec requires a non-empty install command"
	invalidCommandNameMessageConstant     = "install spec command name must be a single executable name"
	commandNameForbiddenCharacters        = " \t\r\n|&;<>()$`'\"\\*?"
)

var (
	// ErrToolNameRequired indicates an InstallSpec without a name.
	ErrToolNameRequired = errors.New(toolNameRequiredMessageConstant)
	// ErrInstallCommandRequired indicates an InstallSpec without an install command.
	ErrInstallCommandRequired = errors.New(installCommandRequiredMessageConstant)
	// ErrInvalidCommandName indicates a command name that cannot be looked up safely on the PATH.
	ErrInvalidCommandName = errors.New(invalidCommandNameMessageConstant)
)

// InstallSpec describes a single upgrade attempt for one tool.
type InstallSpec struct {
	Name           string
	InstallCommand string
	CommandName    string
	TargetVersion  string
	DryRun         bool
}

// Validate enforces the invariants every lifecycle run relies on.
func (spec InstallSpec) Validate() error {
	if len(strings.TrimSpace(spec.Name)) == 0 {
		return ErrToolNameRequired
	}
	if len(strings.TrimSpace(spec.InstallCommand)) == 0 {
		return ErrInstallCommandRequired
	}
	if len(spec.CommandName) > 0 && strings.ContainsAny(spec.CommandName, commandNameForbiddenCharacters) {
		return ErrInvalidCommandName
	}
	return nil
}

// Status enumerates terminal lifecycle outcomes.
type Status string

// Terminal statuses.
const (
	StatusSuccess    Status = Status("success")
	StatusFailed     Status = Status("failed")
	StatusRolledBack Status = Status("rolled_back")
)

// ExecutionResult is the terminal record of one lifecycle run.
type ExecutionResult struct {
	Name    string
	Version string
	Status  Status
}

// Succeeded reports whether the run completed without failure.
func (result ExecutionResult) Succeeded() bool {
	return result.Status == StatusSuccess
}
