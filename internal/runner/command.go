package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/turtle/internal/turtle"
	"github.com/temirov/turtle/internal/ui"
	"github.com/temirov/turtle/internal/utils/flags"
)

const (
	parseCommandUseConstant              = "parse [file|-]"
	parseCommandShortDescriptionConstant = "Print the parsed tree of a Logo program"
	parseCommandLongDescriptionConstant  = "parse reads a Logo program from a file, standard input, or the program library and prints its tree."
	runCommandUseConstant                = "run [file|-]"
	runCommandShortDescriptionConstant   = "Print the turtle commands a Logo program emits"
	runCommandLongDescriptionConstant    = "run executes a Logo program and prints every turtle command it emits, one per line."
	renderCommandUseConstant             = "render [file|-]"
	renderShortDescriptionConstant       = "Render a Logo program as SVG"
	renderLongDescriptionConstant        = "render executes a Logo program on a simulated turtle and writes the drawing as an SVG document."
	programFlagNameConstant              = "program"
	programFlagUsageConstant             = "Name of a program stored in the program library"
	formatFlagNameConstant               = "format"
	treeFormatFlagDescriptionConstant    = "Tree output format"
	commandFormatFlagDescriptionConstant = "Command output format (defaults to text when the log format is console)"
	outputFlagNameConstant               = "output"
	outputFlagShorthandConstant          = "o"
	outputFlagUsageConstant              = "Write the SVG to this file instead of standard output"
	marginFlagNameConstant               = "margin"
	marginFlagUsageConstant              = "Padding around the drawing in SVG units"
	backgroundFlagNameConstant           = "background"
	backgroundFlagUsageConstant          = "SVG background color"
	hideTurtleFlagNameConstant           = "hide-turtle"
	hideTurtleFlagUsageConstant          = "Do not draw the turtle marker"
	defaultBackgroundConstant            = "white"
	outputFilePermissionsConstant        = 0o644
	writeOutputErrorTemplateConstant     = "write %s: %w"
	closeProgramStoreMessageConstant     = "unable to close program store"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the interpreter configuration.
type ConfigurationProvider func() Configuration

// ProgramStore is a program library that must be closed after use.
type ProgramStore interface {
	ProgramSource
	Close() error
}

// ProgramStoreOpener opens the program library for --program lookups.
type ProgramStoreOpener func() (ProgramStore, error)

// CommandBuilder assembles the parse, run and render cobra commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	ProgramStoreOpener           ProgramStoreOpener
}

type sourceOptions struct {
	programName string
}

// BuildParse constructs the parse command.
func (builder *CommandBuilder) BuildParse() (*cobra.Command, error) {
	options := &sourceOptions{}
	var format string
	command := &cobra.Command{
		Use:   parseCommandUseConstant,
		Short: parseCommandShortDescriptionConstant,
		Long:  parseCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.withSource(command, arguments, options, func(service *Service, source Source) error {
				return service.WriteTree(source, format, command.OutOrStdout())
			})
		},
	}
	command.Flags().StringVar(&options.programName, programFlagNameConstant, "", programFlagUsageConstant)
	flags.AddChoiceFlag(command.Flags(), &format, formatFlagNameConstant, TreeFormatJSON, []string{TreeFormatJSON, TreeFormatYAML}, treeFormatFlagDescriptionConstant)
	return command, nil
}

// BuildRun constructs the run command.
func (builder *CommandBuilder) BuildRun() (*cobra.Command, error) {
	options := &sourceOptions{}
	var format string
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			selectedFormat := format
			if !command.Flags().Changed(formatFlagNameConstant) && builder.humanReadableLogging() {
				selectedFormat = CommandFormatText
			}
			return builder.withSource(command, arguments, options, func(service *Service, source Source) error {
				_, runError := service.Run(command.Context(), source, selectedFormat, command.OutOrStdout())
				return runError
			})
		},
	}
	command.Flags().StringVar(&options.programName, programFlagNameConstant, "", programFlagUsageConstant)
	flags.AddChoiceFlag(command.Flags(), &format, formatFlagNameConstant, CommandFormatJSON, []string{CommandFormatJSON, CommandFormatText}, commandFormatFlagDescriptionConstant)
	return command, nil
}

// BuildRender constructs the render command.
func (builder *CommandBuilder) BuildRender() (*cobra.Command, error) {
	options := &sourceOptions{}
	var outputPath string
	var hideTurtle bool
	renderOptions := turtle.RenderOptions{}
	command := &cobra.Command{
		Use:   renderCommandUseConstant,
		Short: renderShortDescriptionConstant,
		Long:  renderLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			renderOptions.ShowTurtle = !hideTurtle
			return builder.withSource(command, arguments, options, func(service *Service, source Source) error {
				return writeOutput(outputPath, command.OutOrStdout(), func(writer io.Writer) error {
					return service.Render(command.Context(), source, writer, renderOptions)
				})
			})
		},
	}
	command.Flags().StringVar(&options.programName, programFlagNameConstant, "", programFlagUsageConstant)
	command.Flags().StringVarP(&outputPath, outputFlagNameConstant, outputFlagShorthandConstant, "", outputFlagUsageConstant)
	command.Flags().Float64Var(&renderOptions.Margin, marginFlagNameConstant, turtle.DefaultMargin, marginFlagUsageConstant)
	command.Flags().StringVar(&renderOptions.Background, backgroundFlagNameConstant, defaultBackgroundConstant, backgroundFlagUsageConstant)
	command.Flags().BoolVar(&hideTurtle, hideTurtleFlagNameConstant, false, hideTurtleFlagUsageConstant)
	return command, nil
}

// withSource resolves the program source named on the command line, builds a
// Service, and runs operation with both.
func (builder *CommandBuilder) withSource(command *cobra.Command, arguments []string, options *sourceOptions, operation func(service *Service, source Source) error) error {
	logger := builder.resolveLogger()
	request := SourceRequest{ProgramName: options.programName}
	if len(arguments) > 0 {
		request.Path = arguments[0]
	}

	dependencies := ServiceDependencies{Logger: logger}
	if builder.humanReadableLogging() {
		dependencies.Observer = ui.NewConsoleRunEventLogger(logger)
	}
	if len(request.ProgramName) > 0 && builder.ProgramStoreOpener != nil {
		store, openError := builder.ProgramStoreOpener()
		if openError != nil {
			return openError
		}
		defer func() {
			if closeError := store.Close(); closeError != nil {
				logger.Warn(closeProgramStoreMessageConstant, zap.Error(closeError))
			}
		}()
		dependencies.Programs = store
	}

	service := NewService(builder.resolveConfiguration(), dependencies)
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	source, loadError := service.LoadSource(executionContext, request, command.InOrStdin())
	if loadError != nil {
		return loadError
	}
	return operation(service, source)
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

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}

// writeOutput runs write against standard output, or buffers it and writes
// outputPath only when write succeeds so a failed run leaves no file behind.
func writeOutput(outputPath string, standardOutput io.Writer, write func(writer io.Writer) error) error {
	if len(outputPath) == 0 {
		return write(standardOutput)
	}
	var document bytes.Buffer
	if writeError := write(&document); writeError != nil {
		return writeError
	}
	if fileError := os.WriteFile(outputPath, document.Bytes(), outputFilePermissionsConstant); fileError != nil {
		return fmt.Errorf(writeOutputErrorTemplateConstant, outputPath, fileError)
	}
	return nil
}
