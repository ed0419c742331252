package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/cmd/cli"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/execshell"
)

const (
	testToolsFileNameConstant = "tools.yaml"
	testToolsContentConstant  = `tools:
  alpha:
    install_cmd: npm install -g @scope/alpha@latest
    cli_command: alpha
  beta:
    install_cmd: pip install --upgrade beta-tool
    installer: pip
  gamma:
    install_cmd: ./install-gamma.sh
  notes:
    description: documentation only
`
)

type scriptedCommandRunner struct {
	commandLines []string
	exitCodes    map[string]int
	outputs      map[string]string
}

func newScriptedCommandRunner() *scriptedCommandRunner {
	return &scriptedCommandRunner{exitCodes: map[string]int{}, outputs: map[string]string{}}
}

func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.commandLines = append(runner.commandLines, command.CommandLine)
	return execshell.ExecutionResult{
		StandardOutput: runner.outputs[command.CommandLine],
		ExitCode:       runner.exitCodes[command.CommandLine],
	}, nil
}

type versionSequenceRunner struct {
	*scriptedCommandRunner
	versions []string
}

func (runner *versionSequenceRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	if command.CommandLine == "alpha --version" && len(runner.versions) > 0 {
		runner.outputs[command.CommandLine] = runner.versions[0]
		runner.versions = runner.versions[1:]
	}
	return runner.scriptedCommandRunner.Run(executionContext, command)
}

func writeToolsFile(testInstance *testing.T) string {
	testInstance.Helper()
	toolsFilePath := filepath.Join(testInstance.TempDir(), testToolsFileNameConstant)
	require.NoError(testInstance, os.WriteFile(toolsFilePath, []byte(testToolsContentConstant), 0o600))
	return toolsFilePath
}

func executeUpgradeCommand(testInstance *testing.T, builder cli.UpgradeCommandBuilder, arguments []string) (string, error) {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestUpgradeCommandRunsSelectedTools(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	runner := newScriptedCommandRunner()
	runner.outputs["which alpha"] = "/usr/local/bin/alpha\n"
	runner.outputs[`python -c "import beta-tool; print(beta-tool.__version__)"`] = "2.0.0\n"

	builder := cli.UpgradeCommandBuilder{
		LoggerProvider: zap.NewNop,
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"alpha", "beta"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{
		"alpha --version",
		"npm install -g @scope/alpha@latest",
		"which alpha",
		"alpha --version",
		"pip install --upgrade beta-tool",
		`python -c "import beta-tool; print(beta-tool.__version__)"`,
	}, runner.commandLines)
	require.Contains(testInstance, output, "alpha: upgraded")
	require.Contains(testInstance, output, "beta: upgraded")
	require.Contains(testInstance, output, "2 succeeded, 0 failed")
}

func TestUpgradeCommandReportsVersionChange(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	runner := &versionSequenceRunner{scriptedCommandRunner: newScriptedCommandRunner(), versions: []string{"1.0.0\n", "1.1.0\n"}}
	runner.outputs["which alpha"] = "/usr/local/bin/alpha\n"
	runner.outputs["npm view @scope/alpha dist-tags.latest"] = "1.1.0\n"

	builder := cli.UpgradeCommandBuilder{
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"alpha"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{
		"alpha --version",
		"npm view @scope/alpha dist-tags.latest",
		"npm install -g @scope/alpha@latest",
		"which alpha",
		"alpha --version",
	}, runner.commandLines)
	require.Contains(testInstance, output, "alpha: upgraded (1.0.0 -> 1.1.0)")
}

func TestUpgradeCommandSkipsToolsAlreadyAtLatest(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	runner := newScriptedCommandRunner()
	runner.outputs["alpha --version"] = "alpha 1.2.3\n"
	runner.outputs["npm view @scope/alpha dist-tags.latest"] = "1.2.3\n"

	builder := cli.UpgradeCommandBuilder{
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"alpha"})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{
		"alpha --version",
		"npm view @scope/alpha dist-tags.latest",
	}, runner.commandLines)
	require.Contains(testInstance, output, "alpha: already up to date (1.2.3)")
	require.Contains(testInstance, output, "1 succeeded, 0 failed, 1 already up to date")
}

func TestUpgradeCommandContinuesPastFailures(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	runner := newScriptedCommandRunner()
	runner.outputs["which alpha"] = "/usr/local/bin/alpha\n"
	runner.exitCodes["pip install --upgrade beta-tool"] = 1

	builder := cli.UpgradeCommandBuilder{
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"--all"})
	require.ErrorContains(testInstance, executionError, "1 of 3 upgrades failed")
	require.Contains(testInstance, output, "beta: failed (rolled back)")
	require.Contains(testInstance, output, "gamma: upgraded")
	require.Contains(testInstance, runner.commandLines, "./install-gamma.sh")
	for _, commandLine := range runner.commandLines {
		require.NotContains(testInstance, commandLine, "notes")
	}
}

func TestUpgradeCommandDryRunExecutesNothing(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	runner := newScriptedCommandRunner()

	builder := cli.UpgradeCommandBuilder{
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"--dry-run", "--all"})
	require.NoError(testInstance, executionError)
	require.Empty(testInstance, runner.commandLines)
	require.Equal(testInstance, 3, strings.Count(output, "dry run complete"))
}

func TestUpgradeCommandValidatesSelection(testInstance *testing.T) {
	toolsFilePath := writeToolsFile(testInstance)
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "no_tools", arguments: []string{}, expectedError: "specify at least one tool or pass --all"},
		{name: "all_with_names", arguments: []string{"--all", "alpha"}, expectedError: "--all cannot be combined"},
		{name: "unknown_tool", arguments: []string{"delta"}, expectedError: `unknown tool "delta"`},
		{name: "tool_without_install_command", arguments: []string{"notes"}, expectedError: "tool notes has no install command"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := newScriptedCommandRunner()
			builder := cli.UpgradeCommandBuilder{
				ConfigurationProvider: func() cli.UpgradeConfiguration {
					return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
				},
				CommandRunnerProvider: func() execshell.CommandRunner { return runner },
			}

			_, executionError := executeUpgradeCommand(testInstance, builder, testCase.arguments)
			require.ErrorContains(testInstance, executionError, testCase.expectedError)
			require.Empty(testInstance, runner.commandLines)
		})
	}
}

func TestUpgradeCommandConsoleObserverReportsRejectedCommands(testInstance *testing.T) {
	toolsFilePath := filepath.Join(testInstance.TempDir(), testToolsFileNameConstant)
	require.NoError(testInstance, os.WriteFile(toolsFilePath, []byte("tools:\n  risky:\n    install_cmd: ./install.sh && rm -rf /tmp/cache\n"), 0o600))

	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	runner := newScriptedCommandRunner()
	builder := cli.UpgradeCommandBuilder{
		ConsoleLoggerProvider:        func() *zap.Logger { return zap.New(observerCore) },
		HumanReadableLoggingProvider: func() bool { return true },
		ConfigurationProvider: func() cli.UpgradeConfiguration {
			return cli.UpgradeConfiguration{ToolsFile: toolsFilePath}
		},
		CommandRunnerProvider: func() execshell.CommandRunner { return runner },
	}

	output, executionError := executeUpgradeCommand(testInstance, builder, []string{"risky"})
	require.Error(testInstance, executionError)
	require.ErrorAs(testInstance, executionError, &execshell.CommandSafetyViolationError{})
	require.Empty(testInstance, runner.commandLines)
	require.Contains(testInstance, output, "risky: failed (rolled back)")
	require.Equal(testInstance, 1, observedLogs.FilterMessageSnippet("Refused").Len())
}
