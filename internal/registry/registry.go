package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Chat2AnyLLM/code-assistant-manager-sub002/internal/upgrade"
)

const (
	registryLoadErrorTemplateConstant     = "failed to load tool registry: %w"
	registryParseErrorTemplateConstant    = "failed to parse tool registry: %w"
	registryPathRequiredMessageConstant   = "tool registry path must be provided"
	toolKeyRequiredMessageConstant        = "tool registry keys must be non-empty"
	unsupportedInstallerTemplateConstant  = "tool %s declares unsupported installer %q"
	unknownToolTemplateConstant           = "unknown tool %q"
	missingInstallCommandTemplateConstant = "tool %s has no install command"
)

//go:embed tools.yaml
var embeddedRegistry []byte

var (
	// ErrRegistryPathRequired indicates Load was called with a blank path.
	ErrRegistryPathRequired = errors.New(registryPathRequiredMessageConstant)
	// ErrToolKeyRequired indicates a blank key in the tools mapping.
	ErrToolKeyRequired = errors.New(toolKeyRequiredMessageConstant)
)

// UnknownToolError reports a lookup for a key the registry does not define.
type UnknownToolError struct {
	Key string
}

// Error describes the missing key.
func (toolError UnknownToolError) Error() string {
	return fmt.Sprintf(unknownToolTemplateConstant, toolError.Key)
}

// MissingInstallCommandError reports a tool entry without an install command.
type MissingInstallCommandError struct {
	Key string
}

// Error describes the incomplete entry.
func (commandError MissingInstallCommandError) Error() string {
	return fmt.Sprintf(missingInstallCommandTemplateConstant, commandError.Key)
}

// ToolDefinition is one entry of the tools mapping.
type ToolDefinition struct {
	Key            string `yaml:"-"`
	Description    string `yaml:"description"`
	InstallCommand string `yaml:"install_cmd"`
	CommandName    string `yaml:"cli_command"`
	Installer      string `yaml:"installer"`
	Version        string `yaml:"version"`
}

// HasInstallCommand reports whether the entry can be upgraded.
func (definition ToolDefinition) HasInstallCommand() bool {
	return len(strings.TrimSpace(definition.InstallCommand)) > 0
}

// StrategyKind returns the forced installer kind, or an empty kind when the selector decides.
func (definition ToolDefinition) StrategyKind() upgrade.StrategyKind {
	return upgrade.StrategyKind(strings.ToLower(strings.TrimSpace(definition.Installer)))
}

// InstallSpec converts the entry into an upgrade spec.
func (definition ToolDefinition) InstallSpec(dryRun bool) (upgrade.InstallSpec, error) {
	if !definition.HasInstallCommand() {
		return upgrade.InstallSpec{}, MissingInstallCommandError{Key: definition.Key}
	}
	return upgrade.InstallSpec{
		Name:           definition.Key,
		InstallCommand: strings.TrimSpace(definition.InstallCommand),
		CommandName:    strings.TrimSpace(definition.CommandName),
		TargetVersion:  strings.TrimSpace(definition.Version),
		DryRun:         dryRun,
	}, nil
}

// NpmPackage returns the npm package the entry installs, if any.
func (definition ToolDefinition) NpmPackage() (string, bool) {
	return ExtractNpmPackage(definition.InstallCommand)
}

type registryDocument struct {
	Tools map[string]ToolDefinition `yaml:"tools"`
}

// Registry is an immutable set of tool definitions keyed by tool key.
type Registry struct {
	definitions map[string]ToolDefinition
	keys        []string
}

// Default parses the registry bundled with the binary.
func Default() (*Registry, error) {
	return Parse(embeddedRegistry)
}

// Load reads and parses a registry file.
func Load(filePath string) (*Registry, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, ErrRegistryPathRequired
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(registryLoadErrorTemplateConstant, readError)
	}
	return Parse(contentBytes)
}

// Parse decodes registry YAML. Installer overrides must name a built-in strategy kind.
func Parse(contentBytes []byte) (*Registry, error) {
	var document registryDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(registryParseErrorTemplateConstant, unmarshalError)
	}

	supportedKinds := upgrade.NewDefaultStrategyRegistry()
	definitions := make(map[string]ToolDefinition, len(document.Tools))
	keys := make([]string, 0, len(document.Tools))
	for rawKey, definition := range document.Tools {
		key := strings.TrimSpace(rawKey)
		if len(key) == 0 {
			return nil, fmt.Errorf(registryParseErrorTemplateConstant, ErrToolKeyRequired)
		}
		definition.Key = key
		if kind := definition.StrategyKind(); len(kind) > 0 && !supportedKinds.Supports(kind) {
			return nil, fmt.Errorf(registryParseErrorTemplateConstant, fmt.Errorf(unsupportedInstallerTemplateConstant, key, definition.Installer))
		}
		definitions[key] = definition
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return &Registry{definitions: definitions, keys: keys}, nil
}

// Keys lists tool keys in lexical order.
func (registry *Registry) Keys() []string {
	return slices.Clone(registry.keys)
}

// Tools lists definitions in key order.
func (registry *Registry) Tools() []ToolDefinition {
	tools := make([]ToolDefinition, 0, len(registry.keys))
	for _, key := range registry.keys {
		tools = append(tools, registry.definitions[key])
	}
	return tools
}

// Lookup returns the definition for key.
func (registry *Registry) Lookup(key string) (ToolDefinition, error) {
	definition, found := registry.definitions[strings.TrimSpace(key)]
	if !found {
		return ToolDefinition{}, UnknownToolError{Key: key}
	}
	return definition, nil
}

// InstallCommand returns the trimmed install command for key, or an empty string.
func (registry *Registry) InstallCommand(key string) string {
	definition, lookupError := registry.Lookup(key)
	if lookupError != nil {
		return ""
	}
	return strings.TrimSpace(definition.InstallCommand)
}
