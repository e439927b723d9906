package server

import (
	"time"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/session"
)

const (
	// DefaultAddress is the listen address used when none is configured.
	DefaultAddress = "127.0.0.1:5000"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 5 * time.Second
	// DefaultMaxCommands bounds the commands a single render request or
	// websocket run may emit.
	DefaultMaxCommands = 100000

	addressConfigurationKeyConstant         = "address"
	emitIntervalConfigurationKeyConstant    = "emit_interval"
	shutdownTimeoutConfigurationKeyConstant = "shutdown_timeout"
	maxCommandsConfigurationKeyConstant     = "max_commands"
	configurationKeySeparatorConstant       = "."
)

// Configuration describes how the server listens and paces program runs.
type Configuration struct {
	Address         string        `mapstructure:"address"`
	EmitInterval    time.Duration `mapstructure:"emit_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxCommands     int           `mapstructure:"max_commands"`
}

// DefaultConfiguration returns the server defaults.
func DefaultConfiguration() Configuration {
	return Configuration{
		Address:         DefaultAddress,
		EmitInterval:    session.DefaultEmitInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxCommands:     DefaultMaxCommands,
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + addressConfigurationKeyConstant:         defaults.Address,
		prefix + configurationKeySeparatorConstant + emitIntervalConfigurationKeyConstant:    defaults.EmitInterval.String(),
		prefix + configurationKeySeparatorConstant + shutdownTimeoutConfigurationKeyConstant: defaults.ShutdownTimeout.String(),
		prefix + configurationKeySeparatorConstant + maxCommandsConfigurationKeyConstant:     defaults.MaxCommands,
	}
}

// Sanitize fills unset values with defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	if len(configuration.Address) == 0 {
		configuration.Address = defaults.Address
	}
	if configuration.EmitInterval < 0 {
		configuration.EmitInterval = 0
	}
	if configuration.ShutdownTimeout <= 0 {
		configuration.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if configuration.MaxCommands <= 0 {
		configuration.MaxCommands = defaults.MaxCommands
	}
	return configuration
}

// InterpreterOptions lowers the command limit of base to MaxCommands. The
// server never runs programs without a command limit.
func (configuration Configuration) InterpreterOptions(base interpreter.Options) interpreter.Options {
	limit := configuration.Sanitize().MaxCommands
	if base.MaxCommands <= 0 || base.MaxCommands > limit {
		base.MaxCommands = limit
	}
	return base
}
