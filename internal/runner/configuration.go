package runner

import "github.com/temirov/turtle/internal/interpreter"

const (
	maxCallDepthConfigurationKeyConstant = "max_call_depth"
	maxCommandsConfigurationKeyConstant  = "max_commands"
	configurationKeySeparatorConstant    = "."
)

// Configuration bounds the resources a program run may use.
type Configuration struct {
	MaxCallDepth int `mapstructure:"max_call_depth"`
	MaxCommands  int `mapstructure:"max_commands"`
}

// DefaultConfiguration returns the interpreter defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		MaxCommands:  0,
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + maxCallDepthConfigurationKeyConstant: defaults.MaxCallDepth,
		prefix + configurationKeySeparatorConstant + maxCommandsConfigurationKeyConstant:  defaults.MaxCommands,
	}
}

// InterpreterOptions converts the configuration into interpreter options.
func (configuration Configuration) InterpreterOptions() interpreter.Options {
	return interpreter.Options{
		MaxCallDepth: configuration.MaxCallDepth,
		MaxCommands:  configuration.MaxCommands,
	}
}
