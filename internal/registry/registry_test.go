package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/registry"
	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
)

const (
	registryTestFileNameConstant = "tools.yaml"
	customRegistryContent        = `tools:
  foo:
    description: Foo CLI
    install_cmd: "  npm install -g @org/foo@latest  "
    cli_command: foo
    version: 2.0.0
  bar-tool:
    install_cmd: pip install --upgrade bar-tool
    installer: PIP
  placeholder:
    description: not installable
`
	unsupportedInstallerContent = `tools:
  foo:
    install_cmd: brew install foo
    installer: brew
`
)

func TestDefaultRegistryCoversKnownTools(testInstance *testing.T) {
	toolRegistry, loadError := registry.Default()
	require.NoError(testInstance, loadError)

	keys := toolRegistry.Keys()
	require.Contains(testInstance, keys, "claude-code")
	require.Contains(testInstance, keys, "cursor-agent")
	require.Contains(testInstance, keys, "droid")
	require.IsIncreasing(testInstance, keys)

	selector := upgrade.NewDefaultSelector()
	for _, definition := range toolRegistry.Tools() {
		require.True(testInstance, definition.HasInstallCommand(), definition.Key)
		spec, specError := definition.InstallSpec(false)
		require.NoError(testInstance, specError)
		require.NoError(testInstance, spec.Validate(), definition.Key)
		if _, isNpm := definition.NpmPackage(); isNpm {
			require.Equal(testInstance, upgrade.StrategyKindNpm, selector.Select(spec.InstallCommand), definition.Key)
		}
	}

	droid, lookupError := toolRegistry.Lookup("droid")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "curl-pipe-shell", selector.SelectRule(droid.InstallCommand).Name)
}

func TestLoadCustomRegistry(testInstance *testing.T) {
	registryPath := filepath.Join(testInstance.TempDir(), registryTestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(registryPath, []byte(customRegistryContent), 0o600))

	toolRegistry, loadError := registry.Load(registryPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{"bar-tool", "foo", "placeholder"}, toolRegistry.Keys())

	foo, lookupError := toolRegistry.Lookup("foo")
	require.NoError(testInstance, lookupError)
	spec, specError := foo.InstallSpec(true)
	require.NoError(testInstance, specError)
	require.Equal(testInstance, upgrade.InstallSpec{
		Name:           "foo",
		InstallCommand: "npm install -g @org/foo@latest",
		CommandName:    "foo",
		TargetVersion:  "2.0.0",
		DryRun:         true,
	}, spec)
	require.Equal(testInstance, upgrade.StrategyKind(""), foo.StrategyKind())
	require.Equal(testInstance, "npm install -g @org/foo@latest", toolRegistry.InstallCommand("foo"))

	barTool, lookupError := toolRegistry.Lookup("bar-tool")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, upgrade.StrategyKindPip, barTool.StrategyKind())

	placeholder, lookupError := toolRegistry.Lookup("placeholder")
	require.NoError(testInstance, lookupError)
	_, specError = placeholder.InstallSpec(false)
	require.ErrorAs(testInstance, specError, &registry.MissingInstallCommandError{})
	require.Empty(testInstance, toolRegistry.InstallCommand("placeholder"))

	_, lookupError = toolRegistry.Lookup("missing")
	require.ErrorAs(testInstance, lookupError, &registry.UnknownToolError{})
	require.Empty(testInstance, toolRegistry.InstallCommand("missing"))
}

func TestLoadRegistryErrors(testInstance *testing.T) {
	_, loadError := registry.Load("   ")
	require.ErrorIs(testInstance, loadError, registry.ErrRegistryPathRequired)

	_, loadError = registry.Load(filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.ErrorIs(testInstance, loadError, os.ErrNotExist)

	_, parseError := registry.Parse([]byte(unsupportedInstallerContent))
	require.ErrorContains(testInstance, parseError, `unsupported installer "brew"`)

	_, parseError = registry.Parse([]byte("tools: [unterminated"))
	require.Error(testInstance, parseError)

	emptyRegistry, parseError := registry.Parse([]byte(""))
	require.NoError(testInstance, parseError)
	require.Empty(testInstance, emptyRegistry.Keys())
}

func TestExtractNpmPackage(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         string
		expectedPackage string
		expectFound     bool
	}{
		{name: "scoped_with_version", command: "npm install -g @anthropic-ai/claude-code@latest", expectedPackage: "@anthropic-ai/claude-code", expectFound: true},
		{name: "scoped_without_version", command: "npm i --global @openai/codex", expectedPackage: "@openai/codex", expectFound: true},
		{name: "unscoped_with_version", command: "npm install -g typescript@5.4.0", expectedPackage: "typescript", expectFound: true},
		{name: "quoted", command: `npm install -g "@google/gemini-cli@latest"`, expectedPackage: "@google/gemini-cli", expectFound: true},
		{name: "extra_flags", command: "npm install -g --force foo", expectedPackage: "foo", expectFound: true},
		{name: "no_package", command: "npm install -g", expectFound: false},
		{name: "not_npm", command: "curl -fsSL https://app.factory.ai/cli | sh", expectFound: false},
		{name: "npm_other_subcommand", command: "npm update -g foo", expectFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			packageName, found := registry.ExtractNpmPackage(testCase.command)
			require.Equal(testInstance, testCase.expectFound, found)
			require.Equal(testInstance, testCase.expectedPackage, packageName)
		})
	}
}
