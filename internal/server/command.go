package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/programs"
	"github.com/temirov/turtle/internal/session"
)

const (
	serveCommandUseConstant              = "serve"
	serveCommandShortDescriptionConstant = "Serve the Logo web application"
	serveCommandLongDescriptionConstant  = "serve starts the HTTP server hosting the canvas client and streams program runs over websockets until interrupted."
	addressFlagNameConstant              = "address"
	addressFlagUsageConstant             = "Listen address (host:port)"
	storeOpenFailedTemplateConstant      = "open program library %s: %w"
	storeCloseFailedMessageConstant      = "unable to close program store"
	logFieldDatabasePathConstant         = "database_path"
	programLibraryMessageConstant        = "program library enabled"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandConfiguration gathers everything the serve command needs. An empty
// DatabasePath disables the program routes.
type CommandConfiguration struct {
	Server       Configuration
	Interpreter  interpreter.Options
	DatabasePath string
}

// ConfigurationProvider supplies the serve command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the serve cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the serve command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	var address string
	command := &cobra.Command{
		Use:   serveCommandUseConstant,
		Short: serveCommandShortDescriptionConstant,
		Long:  serveCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration := builder.resolveConfiguration()
			if command.Flags().Changed(addressFlagNameConstant) {
				configuration.Server.Address = strings.TrimSpace(address)
			}
			executionContext := command.Context()
			if executionContext == nil {
				executionContext = context.Background()
			}
			signalContext, stop := signal.NotifyContext(executionContext, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return builder.serve(signalContext, configuration)
		},
	}
	command.Flags().StringVar(&address, addressFlagNameConstant, DefaultAddress, addressFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) serve(executionContext context.Context, configuration CommandConfiguration) error {
	logger := builder.resolveLogger()
	serverConfiguration := configuration.Server.Sanitize()

	interpreterOptions := serverConfiguration.InterpreterOptions(configuration.Interpreter)
	dependencies := Dependencies{
		Logger:      logger,
		Interpreter: interpreter.New(interpreterOptions),
		Sessions: session.NewManager(session.Configuration{
			EmitInterval: serverConfiguration.EmitInterval,
			Interpreter:  interpreterOptions,
		}, logger),
	}

	databasePath := strings.TrimSpace(configuration.DatabasePath)
	if len(databasePath) > 0 {
		store, openError := programs.Open(databasePath)
		if openError != nil {
			return fmt.Errorf(storeOpenFailedTemplateConstant, databasePath, openError)
		}
		defer func() {
			if closeError := store.Close(); closeError != nil {
				logger.Warn(storeCloseFailedMessageConstant, zap.Error(closeError))
			}
		}()
		logger.Info(programLibraryMessageConstant, zap.String(logFieldDatabasePathConstant, databasePath))
		dependencies.Programs = store
	}

	return New(serverConfiguration, dependencies).Serve(executionContext)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return CommandConfiguration{Server: DefaultConfiguration()}
	}
	return builder.ConfigurationProvider()
}
