package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/execshell"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant     = "/tmp/project"
	testCommandArgumentConstant             = "--version"
	testCommandNameFieldExpectationConstant = "npm --version (in /tmp/project)"
	testShellCommandLineConstant            = "curl -fsSL https://app.factory.ai/cli | sh"
	testExecutionFailureReasonConstant      = "execution failed"
	testStandardErrorMessageConstant        = "npm ERR! network"
	testStartMessageExpectationConstant     = "Running " + testCommandNameFieldExpectationConstant
	testSuccessMessageExpectationConstant   = "Completed " + testCommandNameFieldExpectationConstant
	testFailureMessageExpectationConstant   = testCommandNameFieldExpectationConstant + " failed with exit code 1: " + testStandardErrorMessageConstant
	testExecutionFailureMessageExpectation  = testCommandNameFieldExpectationConstant + " failed: " + testExecutionFailureReasonConstant
	testShellStartMessageExpectation        = "Running " + testShellCommandLineConstant
	testRejectedCommandLineConstant         = "true && rm -rf ~"
	testRejectedMessageExpectation          = `Refused true && rm -rf ~: matches denied pattern "&& rm"`
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandName("npm"),
		Details: execshell.CommandDetails{
			Arguments:        []string{testCommandArgumentConstant},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	shellCommand := execshell.ShellCommand{
		Name:        execshell.CommandName("/bin/sh"),
		Details:     execshell.CommandDetails{Arguments: []string{"-c", testShellCommandLineConstant}},
		Mode:        execshell.ExecutionModeShell,
		CommandLine: testShellCommandLineConstant,
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "shell_command_uses_command_line",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(shellCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testShellStartMessageExpectation,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testExecutionFailureMessageExpectation,
		},
		{
			name: "command_rejected",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandRejected(testRejectedCommandLineConstant, execshell.CommandSafetyViolationError{CommandLine: testRejectedCommandLineConstant, Pattern: "&& rm"})
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: testRejectedMessageExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			consoleLogger := zap.New(observerCore)
			eventLogger := ui.NewConsoleCommandEventLogger(consoleLogger)

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestConsoleCommandEventLoggerSatisfiesObserver(testInstance *testing.T) {
	var observerInstance execshell.CommandEventObserver = ui.NewConsoleCommandEventLogger(nil)
	require.NotNil(testInstance, observerInstance)

	var nilLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		nilLogger.CommandStarted(execshell.ShellCommand{})
		nilLogger.CommandRejected("", execshell.CommandSafetyViolationError{})
	})
}
