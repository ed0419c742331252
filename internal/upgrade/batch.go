package upgrade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	batchFailureTemplateConstant     = "%d of %d upgrades failed: %w"
	logMessageBatchSkippedConstant   = "skipping remaining upgrades: context done"
	logFieldRemainingConstant        = "remaining"
	logMessageAlreadyLatestConstant  = "already at latest version; skipping upgrade"
	logFieldInstalledVersionConstant = "installed_version"
	logFieldLatestVersionConstant    = "latest_version"
)

// BatchItem pairs an install spec with an optional forced strategy kind.
type BatchItem struct {
	Spec InstallSpec
	Kind StrategyKind
}

// BatchOutcome records the result of one batch item.
// PreviousVersion and CurrentVersion are empty when unknown. Skipped marks an
// item that was already at the latest published version and was not run.
type BatchOutcome struct {
	Result          ExecutionResult
	Error           error
	PreviousVersion string
	CurrentVersion  string
	Skipped         bool
}

// VersionUnchanged reports whether both versions are known and equal.
func (outcome BatchOutcome) VersionUnchanged() bool {
	return len(outcome.PreviousVersion) > 0 && outcome.PreviousVersion == outcome.CurrentVersion
}

// VersionReader reports tool versions around an upgrade. An empty string means unknown.
type VersionReader interface {
	InstalledVersion(executionContext context.Context, spec InstallSpec) string
	LatestVersion(executionContext context.Context, item BatchItem) string
}

// BatchReport aggregates the outcomes of a batch in input order.
type BatchReport struct {
	Outcomes []BatchOutcome
}

// SkippedCount returns how many items were already up to date.
func (report BatchReport) SkippedCount() int {
	skipped := 0
	for _, outcome := range report.Outcomes {
		if outcome.Skipped {
			skipped++
		}
	}
	return skipped
}

// FailureCount returns how many items did not succeed.
func (report BatchReport) FailureCount() int {
	failures := 0
	for _, outcome := range report.Outcomes {
		if outcome.Error != nil || !outcome.Result.Succeeded() {
			failures++
		}
	}
	return failures
}

// Err summarizes the batch; nil when every item succeeded.
func (report BatchReport) Err() error {
	failures := report.FailureCount()
	if failures == 0 {
		return nil
	}
	joined := make([]error, 0, failures)
	for _, outcome := range report.Outcomes {
		if outcome.Error != nil {
			joined = append(joined, outcome.Error)
		}
	}
	return fmt.Errorf(batchFailureTemplateConstant, failures, len(report.Outcomes), errors.Join(joined...))
}

// Upgrader runs one item of a batch.
type Upgrader interface {
	Upgrade(executionContext context.Context, spec InstallSpec, forcedKind StrategyKind) (ExecutionResult, error)
}

// BatchRunner upgrades items one at a time, continuing past failures.
type BatchRunner struct {
	upgrader      Upgrader
	versionReader VersionReader
	logger        *zap.Logger
}

// NewBatchRunner builds a BatchRunner around the upgrader without version tracking.
func NewBatchRunner(upgrader Upgrader, logger *zap.Logger) *BatchRunner {
	return NewBatchRunnerWithVersions(upgrader, nil, logger)
}

// NewBatchRunnerWithVersions builds a BatchRunner that records installed versions
// before and after each upgrade and skips items already at the latest version.
// Versions are never read for dry-run items.
func NewBatchRunnerWithVersions(upgrader Upgrader, versionReader VersionReader, logger *zap.Logger) *BatchRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{upgrader: upgrader, versionReader: versionReader, logger: logger}
}

// Run upgrades every item sequentially. Items not started before the context
// ends are reported as failed with the context error.
func (runner *BatchRunner) Run(executionContext context.Context, items []BatchItem) BatchReport {
	report := BatchReport{Outcomes: make([]BatchOutcome, 0, len(items))}
	for index, item := range items {
		if contextError := executionContext.Err(); contextError != nil {
			runner.logger.Warn(logMessageBatchSkippedConstant, zap.Int(logFieldRemainingConstant, len(items)-index), zap.Error(contextError))
			for _, skipped := range items[index:] {
				report.Outcomes = append(report.Outcomes, BatchOutcome{
					Result: ExecutionResult{Name: skipped.Spec.Name, Version: skipped.Spec.TargetVersion, Status: StatusFailed},
					Error:  contextError,
				})
			}
			break
		}
		report.Outcomes = append(report.Outcomes, runner.runItem(executionContext, item))
	}
	return report
}

func (runner *BatchRunner) runItem(executionContext context.Context, item BatchItem) BatchOutcome {
	if runner.versionReader == nil || item.Spec.DryRun {
		result, upgradeError := runner.upgrader.Upgrade(executionContext, item.Spec, item.Kind)
		return BatchOutcome{Result: result, Error: upgradeError}
	}

	previousVersion := runner.versionReader.InstalledVersion(executionContext, item.Spec)
	if len(previousVersion) > 0 {
		if latestVersion := runner.versionReader.LatestVersion(executionContext, item); latestVersion == previousVersion {
			runner.logger.Info(
				logMessageAlreadyLatestConstant,
				zap.String(logFieldToolConstant, item.Spec.Name),
				zap.String(logFieldInstalledVersionConstant, previousVersion),
				zap.String(logFieldLatestVersionConstant, latestVersion),
			)
			return BatchOutcome{
				Result:          ExecutionResult{Name: item.Spec.Name, Version: item.Spec.TargetVersion, Status: StatusSuccess},
				PreviousVersion: previousVersion,
				CurrentVersion:  previousVersion,
				Skipped:         true,
			}
		}
	}

	result, upgradeError := runner.upgrader.Upgrade(executionContext, item.Spec, item.Kind)
	return BatchOutcome{
		Result:          result,
		Error:           upgradeError,
		PreviousVersion: previousVersion,
		CurrentVersion:  runner.versionReader.InstalledVersion(executionContext, item.Spec),
	}
}
