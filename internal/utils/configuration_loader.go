package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeySeparatorConstant               = "."
	environmentWordSeparatorConstant                = "_"
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	environmentBindErrorTemplateConstant            = "failed to bind environment variables for %s: %w"
	listValueSeparatorConstant                      = ","
)

// ConfigurationLoader resolves cam settings. Precedence, lowest first:
// the defaults map, embedded defaults, the config file, then environment variables.
type ConfigurationLoader struct {
	fileName           string
	fileType           string
	environmentPrefix  string
	searchDirectories  []string
	keyReplacer        *strings.Replacer
	embeddedDefaults   []byte
	embeddedType       string
	environmentAliases map[string][]string
}

// LoadedConfiguration reports which config file, if any, was read.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader looks for fileName.fileType in searchDirectories.
// A key such as common.log_level is overridden by PREFIX_COMMON_LOG_LEVEL.
func NewConfigurationLoader(fileName string, fileType string, environmentPrefix string, searchDirectories []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		fileName:          fileName,
		fileType:          fileType,
		environmentPrefix: environmentPrefix,
		searchDirectories: append([]string(nil), searchDirectories...),
		keyReplacer:       strings.NewReplacer(configurationKeySeparatorConstant, environmentWordSeparatorConstant),
	}
}

// SetEmbeddedConfiguration installs the defaults document compiled into the binary.
// An empty document clears previously installed defaults.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedType = strings.TrimSpace(configurationType)
	loader.embeddedDefaults = nil
	if len(configurationData) > 0 {
		loader.embeddedDefaults = append([]byte(nil), configurationData...)
	}
}

// SetEnvironmentAliases accepts additional variable names for a key, such as a
// legacy CODE_ASSISTANT_MANAGER_TOOLS_FILE for upgrade.tools_file. The prefixed name still wins.
func (loader *ConfigurationLoader) SetEnvironmentAliases(aliases map[string][]string) {
	if loader == nil {
		return
	}
	loader.environmentAliases = make(map[string][]string, len(aliases))
	for configurationKey, environmentNames := range aliases {
		loader.environmentAliases[configurationKey] = append([]string(nil), environmentNames...)
	}
}

// LoadConfiguration decodes the merged settings into targetConfiguration.
// configurationFilePath, when set, replaces the directory search. A missing
// file found by search is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	settings := viper.New()
	settings.SetConfigName(loader.fileName)
	settings.SetConfigType(loader.fileType)

	if mergeError := loader.mergeEmbeddedDefaults(settings); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}
	for _, searchDirectory := range loader.searchDirectories {
		settings.AddConfigPath(searchDirectory)
	}
	if bindError := loader.bindEnvironment(settings); bindError != nil {
		return LoadedConfiguration{}, bindError
	}
	for defaultKey, defaultValue := range defaultValues {
		settings.SetDefault(defaultKey, defaultValue)
	}

	if len(configurationFilePath) > 0 {
		settings.SetConfigFile(configurationFilePath)
	}
	if readError := settings.MergeInConfig(); readError != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFound) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, readError)
		}
	}

	// Durations such as "10m" and comma-separated denied_patterns arrive as strings from the environment.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
	))
	if unmarshalError := settings.Unmarshal(targetConfiguration, decodeHook); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: settings.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedDefaults(settings *viper.Viper) error {
	if len(loader.embeddedDefaults) == 0 {
		return nil
	}
	embeddedType := loader.fileType
	if len(loader.embeddedType) > 0 {
		embeddedType = loader.embeddedType
	}
	settings.SetConfigType(embeddedType)
	defer settings.SetConfigType(loader.fileType)
	if mergeError := settings.MergeConfig(bytes.NewReader(loader.embeddedDefaults)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) bindEnvironment(settings *viper.Viper) error {
	settings.SetEnvPrefix(loader.environmentPrefix)
	settings.SetEnvKeyReplacer(loader.keyReplacer)
	settings.AutomaticEnv()

	for configurationKey, environmentNames := range loader.environmentAliases {
		bindArguments := append([]string{configurationKey, loader.environmentName(configurationKey)}, environmentNames...)
		if bindError := settings.BindEnv(bindArguments...); bindError != nil {
			return fmt.Errorf(environmentBindErrorTemplateConstant, configurationKey, bindError)
		}
	}
	return nil
}

func (loader *ConfigurationLoader) environmentName(configurationKey string) string {
	environmentKey := strings.ToUpper(loader.keyReplacer.Replace(configurationKey))
	if len(loader.environmentPrefix) == 0 {
		return environmentKey
	}
	return strings.ToUpper(loader.environmentPrefix) + environmentWordSeparatorConstant + environmentKey
}
