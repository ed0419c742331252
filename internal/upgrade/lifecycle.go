package upgrade

import (
	"context"

	"go.uber.org/zap"
)

const (
	logMessageUpgradeStartingConstant     = "starting upgrade"
	logMessageStageStartingConstant       = "running upgrade stage"
	logMessageStageFailedConstant         = "upgrade stage failed"
	logMessageDryRunSkipConstant          = "dry run: skipping install and post-check"
	logMessageRollbackStartingConstant    = "attempting rollback"
	logMessageRollbackFailedConstant      = "rollback failed"
	logMessageCleanupFailedConstant       = "cleanup failed"
	logMessageUpgradeSucceededConstant    = "upgrade succeeded"
	logMessageUpgradeRolledBackConstant   = "upgrade failed and was rolled back"
	logMessageDefaultHookConstant         = "no-op lifecycle hook"
	logMessageRollbackUnsupportedConstant = "rollback is not supported for this installer; manual intervention may be required"
	logFieldToolConstant                  = "tool"
	logFieldStageConstant                 = "stage"
	logFieldTargetVersionConstant         = "target_version"
	logFieldDryRunConstant                = "dry_run"
	logFieldStatusConstant                = "status"
)

// Strategy is the set of lifecycle hooks one installer kind provides.
// Every hook returns nil on success; a non-nil error from PreCheck, Fetch,
// Install or PostCheck triggers exactly one Rollback.
type Strategy interface {
	PreCheck(executionContext context.Context) error
	Fetch(executionContext context.Context) error
	Install(executionContext context.Context) error
	PostCheck(executionContext context.Context) error
	Rollback(executionContext context.Context) error
	Cleanup(executionContext context.Context) error
}

// DefaultHooks supplies no-op lifecycle hooks for strategies to embed.
// Install has no default.
type DefaultHooks struct {
	hookLogger *zap.Logger
}

// NewDefaultHooks builds DefaultHooks that log through the provided logger.
func NewDefaultHooks(logger *zap.Logger) DefaultHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return DefaultHooks{hookLogger: logger}
}

// PreCheck succeeds without side effects.
func (hooks DefaultHooks) PreCheck(executionContext context.Context) error {
	hooks.logHook(StagePreCheck)
	return nil
}

// Fetch succeeds without side effects.
func (hooks DefaultHooks) Fetch(executionContext context.Context) error {
	hooks.logHook(StageFetch)
	return nil
}

// PostCheck succeeds without side effects.
func (hooks DefaultHooks) PostCheck(executionContext context.Context) error {
	hooks.logHook(StagePostCheck)
	return nil
}

// Rollback warns that nothing was reverted and reports success.
func (hooks DefaultHooks) Rollback(executionContext context.Context) error {
	hooks.activeLogger().Warn(logMessageRollbackUnsupportedConstant)
	return nil
}

// Cleanup succeeds without side effects.
func (hooks DefaultHooks) Cleanup(executionContext context.Context) error {
	hooks.logHook(StageCleanup)
	return nil
}

func (hooks DefaultHooks) logHook(stage Stage) {
	hooks.activeLogger().Debug(logMessageDefaultHookConstant, zap.String(logFieldStageConstant, string(stage)))
}

func (hooks DefaultHooks) activeLogger() *zap.Logger {
	if hooks.hookLogger == nil {
		return zap.NewNop()
	}
	return hooks.hookLogger
}

type lifecycleStep struct {
	stage Stage
	hook  func(context.Context) error
}

// Run executes one upgrade attempt.
//
// Steps run in order pre_check, fetch, install, post_check. In dry-run mode
// install and post_check are skipped. The first failing step stops the
// sequence and Rollback is invoked once. Cleanup always runs last and its
// errors are logged without changing the outcome. A hook that panics is not
// recovered: the panic propagates and neither Rollback nor Cleanup runs.
func Run(executionContext context.Context, spec InstallSpec, strategy Strategy, logger *zap.Logger) (ExecutionResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	failedResult := ExecutionResult{Name: spec.Name, Version: spec.TargetVersion, Status: StatusFailed}
	if strategy == nil {
		return failedResult, ErrStrategyNotConfigured
	}
	if validationError := spec.Validate(); validationError != nil {
		return failedResult, InvalidSpecError{Name: spec.Name, Cause: validationError}
	}

	runLogger := logger.With(zap.String(logFieldToolConstant, spec.Name))
	runLogger.Info(
		logMessageUpgradeStartingConstant,
		zap.String(logFieldTargetVersionConstant, spec.TargetVersion),
		zap.Bool(logFieldDryRunConstant, spec.DryRun),
	)

	outcome, outcomeError := runSteps(executionContext, spec, strategy, runLogger)

	if cleanupError := strategy.Cleanup(executionContext); cleanupError != nil {
		runLogger.Warn(logMessageCleanupFailedConstant, zap.Error(cleanupError))
	}

	switch outcome.Status {
	case StatusSuccess:
		runLogger.Info(logMessageUpgradeSucceededConstant, zap.String(logFieldStatusConstant, string(outcome.Status)))
	case StatusRolledBack:
		runLogger.Error(logMessageUpgradeRolledBackConstant, zap.String(logFieldStatusConstant, string(outcome.Status)), zap.Error(outcomeError))
	}
	return outcome, outcomeError
}

func runSteps(executionContext context.Context, spec InstallSpec, strategy Strategy, logger *zap.Logger) (ExecutionResult, error) {
	steps := []lifecycleStep{
		{stage: StagePreCheck, hook: strategy.PreCheck},
		{stage: StageFetch, hook: strategy.Fetch},
	}
	if spec.DryRun {
		logger.Debug(logMessageDryRunSkipConstant)
	} else {
		steps = append(steps,
			lifecycleStep{stage: StageInstall, hook: strategy.Install},
			lifecycleStep{stage: StagePostCheck, hook: strategy.PostCheck},
		)
	}

	for _, step := range steps {
		logger.Debug(logMessageStageStartingConstant, zap.String(logFieldStageConstant, string(step.stage)))
		if stepError := step.hook(executionContext); stepError != nil {
			logger.Error(logMessageStageFailedConstant, zap.String(logFieldStageConstant, string(step.stage)), zap.Error(stepError))
			return rollback(executionContext, spec, strategy, step.stage, stepError, logger)
		}
	}

	return ExecutionResult{Name: spec.Name, Version: spec.TargetVersion, Status: StatusSuccess}, nil
}

func rollback(executionContext context.Context, spec InstallSpec, strategy Strategy, failedStage Stage, stepError error, logger *zap.Logger) (ExecutionResult, error) {
	logger.Info(logMessageRollbackStartingConstant, zap.String(logFieldStageConstant, string(failedStage)))
	if rollbackError := strategy.Rollback(executionContext); rollbackError != nil {
		logger.Error(logMessageRollbackFailedConstant, zap.Error(rollbackError))
		return ExecutionResult{Name: spec.Name, Version: spec.TargetVersion, Status: StatusFailed},
			RollbackFailureError{Name: spec.Name, Stage: failedStage, Cause: rollbackError, Original: stepError}
	}
	return ExecutionResult{Name: spec.Name, Version: spec.TargetVersion, Status: StatusRolledBack},
		UpgradeFailureError{Name: spec.Name, Stage: failedStage, Cause: stepError}
}
