package upgrade

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	pipInstallTemplateConstant              = "pip install --upgrade %s%s"
	pipVersionPinTemplateConstant           = "==%s"
	pythonVersionQueryTemplateConstant      = `python -c "import %s; print(%s.__version__)"`
	logMessagePipVersionQueryFailedConstant = "post-check: unable to import package to verify version"
	logMessagePipVersionReportedConstant    = "post-check: package reported version"
	logFieldReportedVersionConstant         = "reported_version"
	versionMismatchReasonTemplate           = "version mismatch: expected %q, package reported %q"
	invalidPackageNameTemplateConstant      = "invalid pip package name %q"
	invalidVersionTemplateConstant          = "invalid pip target version %q"
)

var (
	pipPackageNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
	pipVersionPattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+!*_-]*$`)
)

// InvalidPackageNameError reports a pip package name or version that cannot be
// placed on a command line safely.
type InvalidPackageNameError struct {
	Name    string
	Version string
}

// Error describes the rejected value.
func (packageError InvalidPackageNameError) Error() string {
	if len(packageError.Version) > 0 {
		return fmt.Sprintf(invalidVersionTemplateConstant, packageError.Version)
	}
	return fmt.Sprintf(invalidPackageNameTemplateConstant, packageError.Name)
}

// PipStrategy upgrades tools distributed as Python packages. The install spec name is
// the package name.
type PipStrategy struct {
	installerBase
}

// NewPipStrategy builds a PipStrategy for the install spec.
func NewPipStrategy(spec InstallSpec, dependencies StrategyDependencies) PipStrategy {
	return PipStrategy{installerBase: newInstallerBase(spec, dependencies)}
}

// PreCheck rejects package names and versions outside the pip grammar.
func (strategy PipStrategy) PreCheck(executionContext context.Context) error {
	if !pipPackageNamePattern.MatchString(strategy.spec.Name) {
		return InvalidPackageNameError{Name: strategy.spec.Name}
	}
	if len(strategy.spec.TargetVersion) > 0 && !pipVersionPattern.MatchString(strategy.spec.TargetVersion) {
		return InvalidPackageNameError{Name: strategy.spec.Name, Version: strategy.spec.TargetVersion}
	}
	return nil
}

// InstallCommand returns the pip command line the strategy runs.
func (strategy PipStrategy) InstallCommand() string {
	versionPin := ""
	if len(strategy.spec.TargetVersion) > 0 {
		versionPin = fmt.Sprintf(pipVersionPinTemplateConstant, strategy.spec.TargetVersion)
	}
	return fmt.Sprintf(pipInstallTemplateConstant, strategy.spec.Name, versionPin)
}

// VersionQueryCommand returns the python command line used to read the installed version.
func (strategy PipStrategy) VersionQueryCommand() string {
	return fmt.Sprintf(pythonVersionQueryTemplateConstant, strategy.spec.Name, strategy.spec.Name)
}

// Install runs pip install --upgrade for the package.
func (strategy PipStrategy) Install(executionContext context.Context) error {
	_, installError := strategy.runCommand(executionContext, strategy.InstallCommand(), true)
	return installError
}

// PostCheck reads the installed version through python. A failed import only
// warns; a reported version that does not contain the target fails.
func (strategy PipStrategy) PostCheck(executionContext context.Context) error {
	reportOutput, reportError := strategy.runCommand(executionContext, strategy.VersionQueryCommand(), true)
	if reportError != nil {
		strategy.logger.Warn(logMessagePipVersionQueryFailedConstant, zap.Error(reportError))
		return nil
	}
	reportedVersion := strings.TrimSpace(reportOutput)
	strategy.logger.Debug(logMessagePipVersionReportedConstant, zap.String(logFieldReportedVersionConstant, reportedVersion))
	targetVersion := strategy.spec.TargetVersion
	if len(targetVersion) == 0 || len(reportedVersion) == 0 {
		return nil
	}
	if !strings.Contains(reportedVersion, targetVersion) {
		return PostCheckError{Name: strategy.spec.Name, Reason: fmt.Sprintf(versionMismatchReasonTemplate, targetVersion, reportedVersion)}
	}
	return nil
}
