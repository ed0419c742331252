package upgrade

import (
	"errors"
	"fmt"
)

const (
	strategyNotConfiguredMessageConstant  = "upgrade strategy not configured"
	executorNotConfiguredMessageConstant  = "upgrade command executor not configured"
	upgradeFailureTemplateConstant        = "upgrade of %s failed during %s: %v"
	rollbackFailureTemplateConstant       = "rollback of %s failed: %v (after %s failure: %v)"
	postCheckFailureTemplateConstant      = "post-check failed for %s: %s"
	postCheckFailureCauseTemplateConstant = "post-check failed for %s: %s: %v"
	invalidSpecTemplateConstant           = "invalid install spec for %q: %v"
)

var (
	// ErrStrategyNotConfigured indicates Run was called without a strategy.
	ErrStrategyNotConfigured = errors.New(strategyNotConfiguredMessageConstant)
	// ErrExecutorNotConfigured indicates a strategy needed to run a command but has no executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// Stage names a lifecycle step.
type Stage string

// Lifecycle stages.
const (
	StagePreCheck  Stage = Stage("pre_check")
	StageFetch     Stage = Stage("fetch")
	StageInstall   Stage = Stage("install")
	StagePostCheck Stage = Stage("post_check")
	StageRollback  Stage = Stage("rollback")
	StageCleanup   Stage = Stage("cleanup")
)

// InvalidSpecError reports an InstallSpec rejected before any hook ran.
type InvalidSpecError struct {
	Name  string
	Cause error
}

// Error describes the rejected install spec.
func (specError InvalidSpecError) Error() string {
	return fmt.Sprintf(invalidSpecTemplateConstant, specError.Name, specError.Cause)
}

// Unwrap exposes the validation error.
func (specError InvalidSpecError) Unwrap() error {
	return specError.Cause
}

// PostCheckError reports an installed artifact that failed verification.
type PostCheckError struct {
	Name   string
	Reason string
	Cause  error
}

// Error describes the verification failure.
func (postCheckError PostCheckError) Error() string {
	if postCheckError.Cause == nil {
		return fmt.Sprintf(postCheckFailureTemplateConstant, postCheckError.Name, postCheckError.Reason)
	}
	return fmt.Sprintf(postCheckFailureCauseTemplateConstant, postCheckError.Name, postCheckError.Reason, postCheckError.Cause)
}

// Unwrap exposes the underlying cause.
func (postCheckError PostCheckError) Unwrap() error {
	return postCheckError.Cause
}

// UpgradeFailureError reports a failed step after a successful rollback attempt.
type UpgradeFailureError struct {
	Name  string
	Stage Stage
	Cause error
}

// Error describes the failed step.
func (failure UpgradeFailureError) Error() string {
	return fmt.Sprintf(upgradeFailureTemplateConstant, failure.Name, failure.Stage, failure.Cause)
}

// Unwrap exposes the original step error.
func (failure UpgradeFailureError) Unwrap() error {
	return failure.Cause
}

// RollbackFailureError reports a rollback that failed after a step failure.
// Cause is the rollback error; Original is the step error that triggered the rollback.
type RollbackFailureError struct {
	Name     string
	Stage    Stage
	Cause    error
	Original error
}

// Error describes both the rollback failure and the step failure that preceded it.
func (failure RollbackFailureError) Error() string {
	return fmt.Sprintf(rollbackFailureTemplateConstant, failure.Name, failure.Cause, failure.Stage, failure.Original)
}

// Unwrap exposes the rollback error.
func (failure RollbackFailureError) Unwrap() error {
	return failure.Cause
}
