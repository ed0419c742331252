package utils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/utils"
)

const testHomeDirectoryConstant = "/home/tester"

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_slash", candidate: "~/.config/code-assistant-manager/tools.yaml", expectedPath: filepath.Join(testHomeDirectoryConstant, ".config/code-assistant-manager/tools.yaml")},
		{name: "trimmed", candidate: "  ~/tools.yaml ", expectedPath: filepath.Join(testHomeDirectoryConstant, "tools.yaml")},
		{name: "other_user_unchanged", candidate: "~root/tools.yaml", expectedPath: "~root/tools.yaml"},
		{name: "absolute_unchanged", candidate: "/etc/cam/tools.yaml", expectedPath: "/etc/cam/tools.yaml"},
		{name: "empty", candidate: "", expectedPath: ""},
	}

	expander := utils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil })
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderProviderFailure(testInstance *testing.T) {
	expander := utils.NewHomeExpanderWithProvider(func() (string, error) { return "", errors.New("no home") })
	require.Equal(testInstance, "~/tools.yaml", expander.Expand("~/tools.yaml"))

	var nilExpander *utils.HomeExpander
	require.Equal(testInstance, "~/tools.yaml", nilExpander.Expand("~/tools.yaml"))
}
