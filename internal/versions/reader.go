package versions

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/registry"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
)

const (
	installedVersionTemplateConstant   = "%s --version"
	latestNpmVersionTemplateConstant   = "npm view %s dist-tags.latest"
	executorRequiredMessageConstant    = "version reader requires a command executor"
	logMessageInstalledUnknownConstant = "unable to read installed version"
	logMessageLatestUnknownConstant    = "unable to read latest published version"
	logFieldToolConstant               = "tool"
	logFieldPackageConstant            = "package"
)

var (
	// ErrExecutorRequired indicates NewReader was called without an executor.
	ErrExecutorRequired = errors.New(executorRequiredMessageConstant)

	versionExpression    = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?(?:[-+][\w.]+)?`)
	npmPackageExpression = regexp.MustCompile(`^(?:@[a-z0-9][a-z0-9._~-]*/)?[a-z0-9][a-z0-9._~-]*$`)
)

// ParseVersion returns the first version-looking token in output, or an empty string.
func ParseVersion(output string) string {
	return versionExpression.FindString(output)
}

// Reader implements upgrade.VersionReader on top of a CommandExecutor.
type Reader struct {
	executor upgrade.CommandExecutor
	logger   *zap.Logger
}

// NewReader constructs a Reader.
func NewReader(executor upgrade.CommandExecutor, logger *zap.Logger) (*Reader, error) {
	if executor == nil {
		return nil, ErrExecutorRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{executor: executor, logger: logger}, nil
}

// InstalledVersion runs "<command> --version". Specs without a command name,
// or whose command name fails validation, report an unknown version.
func (reader *Reader) InstalledVersion(executionContext context.Context, spec upgrade.InstallSpec) string {
	commandName := strings.TrimSpace(spec.CommandName)
	if len(commandName) == 0 || spec.Validate() != nil {
		return ""
	}
	output, executionError := reader.executor.Execute(executionContext, fmt.Sprintf(installedVersionTemplateConstant, commandName), true)
	if executionError != nil {
		reader.logger.Debug(logMessageInstalledUnknownConstant, zap.String(logFieldToolConstant, spec.Name), zap.Error(executionError))
		return ""
	}
	return ParseVersion(output)
}

// LatestVersion reads the npm "latest" dist-tag for npm-installed tools.
// Other installers, and package names outside the npm grammar, report unknown.
func (reader *Reader) LatestVersion(executionContext context.Context, item upgrade.BatchItem) string {
	if len(item.Kind) > 0 && item.Kind != upgrade.StrategyKindNpm {
		return ""
	}
	packageName, found := registry.ExtractNpmPackage(item.Spec.InstallCommand)
	if !found || !npmPackageExpression.MatchString(packageName) {
		return ""
	}
	output, executionError := reader.executor.Execute(executionContext, fmt.Sprintf(latestNpmVersionTemplateConstant, packageName), true)
	if executionError != nil {
		reader.logger.Debug(logMessageLatestUnknownConstant, zap.String(logFieldPackageConstant, packageName), zap.Error(executionError))
		return ""
	}
	return ParseVersion(output)
}
