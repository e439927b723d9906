package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/logo"
	"github.com/temirov/turtle/internal/programs"
	"github.com/temirov/turtle/internal/turtle"
	"github.com/temirov/turtle/internal/ui"
)

const (
	// TreeFormatJSON prints the parsed tree as indented JSON.
	TreeFormatJSON = "json"
	// TreeFormatYAML prints the parsed tree as YAML.
	TreeFormatYAML = "yaml"
	// CommandFormatJSON prints one JSON object per turtle command.
	CommandFormatJSON = "json"
	// CommandFormatText prints one Logo-style line per turtle command.
	CommandFormatText = "text"

	standardInputPathConstant              = "-"
	standardInputLabelConstant             = "<stdin>"
	programLabelPrefixConstant             = "program:"
	jsonIndentConstant                     = "  "
	yamlIndentConstant                     = 2
	readSourceErrorTemplateConstant        = "read %s: %w"
	loadProgramErrorTemplateConstant       = "load program %q: %w"
	parseSourceErrorTemplateConstant       = "parse %s: %w"
	runSourceErrorTemplateConstant         = "run %s: %w"
	encodeTreeErrorTemplateConstant        = "encode tree: %w"
	writeCommandErrorTemplateConstant      = "write command: %w"
	renderErrorTemplateConstant            = "render %s: %w"
	unsupportedFormatTemplateConstant      = "unsupported output format %q"
	runCompletedMessageConstant            = "program run completed"
	runFailedMessageConstant               = "program run failed"
	logFieldProgramLabelConstant           = "program"
	logFieldEmittedCommandsConstant        = "emitted_commands"
	missingSourceMessageConstant           = "a source file, - for standard input, or --program is required"
	conflictingSourceMessageConstant       = "use either a source file or --program, not both"
	programStoreUnavailableMessageConstant = "program store is not configured"
)

var (
	// ErrMissingSource indicates that no program source was given.
	ErrMissingSource = errors.New(missingSourceMessageConstant)
	// ErrConflictingSource indicates that both a file and a stored program were given.
	ErrConflictingSource = errors.New(conflictingSourceMessageConstant)
	// ErrProgramStoreUnavailable indicates that --program was used without a program store.
	ErrProgramStoreUnavailable = errors.New(programStoreUnavailableMessageConstant)
)

// ProgramSource looks up stored programs by name.
type ProgramSource interface {
	Get(executionContext context.Context, name string) (programs.Program, error)
}

// RunEventObserver is notified about the lifecycle of program runs.
type RunEventObserver interface {
	RunStarted(programLabel string)
	RunCompleted(programLabel string, emittedCommands int)
	RunFailed(programLabel string, failure error)
}

// SourceRequest names where a program comes from: a file path, "-" for
// standard input, or the name of a stored program.
type SourceRequest struct {
	Path        string
	ProgramName string
}

// Source is loaded program text with a label used in messages.
type Source struct {
	Label string
	Text  string
}

// ServiceDependencies are the collaborators of a Service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Observer RunEventObserver
	Programs ProgramSource
}

// Service executes command-line operations on Logo programs.
type Service struct {
	interpreter *interpreter.Interpreter
	logger      *zap.Logger
	observer    RunEventObserver
	programs    ProgramSource
	formatter   ui.CommandEventFormatter
}

// NewService constructs a Service.
func NewService(configuration Configuration, dependencies ServiceDependencies) *Service {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		interpreter: interpreter.New(configuration.InterpreterOptions()),
		logger:      logger,
		observer:    dependencies.Observer,
		programs:    dependencies.Programs,
	}
}

// LoadSource reads the program text named by request.
func (service *Service) LoadSource(executionContext context.Context, request SourceRequest, standardInput io.Reader) (Source, error) {
	path := strings.TrimSpace(request.Path)
	programName := strings.TrimSpace(request.ProgramName)
	switch {
	case len(path) > 0 && len(programName) > 0:
		return Source{}, ErrConflictingSource
	case len(programName) > 0:
		if service.programs == nil {
			return Source{}, ErrProgramStoreUnavailable
		}
		program, loadError := service.programs.Get(executionContext, programName)
		if loadError != nil {
			return Source{}, fmt.Errorf(loadProgramErrorTemplateConstant, programName, loadError)
		}
		return Source{Label: programLabelPrefixConstant + programName, Text: program.Source}, nil
	case path == standardInputPathConstant:
		content, readError := io.ReadAll(standardInput)
		if readError != nil {
			return Source{}, fmt.Errorf(readSourceErrorTemplateConstant, standardInputLabelConstant, readError)
		}
		return Source{Label: standardInputLabelConstant, Text: string(content)}, nil
	case len(path) > 0:
		content, readError := os.ReadFile(path)
		if readError != nil {
			return Source{}, fmt.Errorf(readSourceErrorTemplateConstant, path, readError)
		}
		return Source{Label: path, Text: string(content)}, nil
	default:
		return Source{}, ErrMissingSource
	}
}

// WriteTree parses source and writes its tree to writer in format.
func (service *Service) WriteTree(source Source, format string, writer io.Writer) error {
	program, parseError := logo.Parse(source.Text)
	if parseError != nil {
		return fmt.Errorf(parseSourceErrorTemplateConstant, source.Label, parseError)
	}

	switch format {
	case TreeFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		if encodeError := encoder.Encode(program); encodeError != nil {
			return fmt.Errorf(encodeTreeErrorTemplateConstant, encodeError)
		}
	case TreeFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(program); encodeError != nil {
			return fmt.Errorf(encodeTreeErrorTemplateConstant, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return fmt.Errorf(encodeTreeErrorTemplateConstant, closeError)
		}
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
	return nil
}

// Run executes source and writes every emitted command to writer in format.
// It returns the number of commands written.
func (service *Service) Run(executionContext context.Context, source Source, format string, writer io.Writer) (int, error) {
	var write func(command interpreter.Command) error
	switch format {
	case CommandFormatJSON:
		encoder := json.NewEncoder(writer)
		write = func(command interpreter.Command) error {
			return encoder.Encode(command)
		}
	case CommandFormatText:
		write = func(command interpreter.Command) error {
			_, writeError := fmt.Fprintln(writer, service.formatter.FormatCommand(command))
			return writeError
		}
	default:
		return 0, fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}

	emittedCommands := 0
	runError := service.execute(executionContext, source, func(command interpreter.Command) error {
		if writeError := write(command); writeError != nil {
			return fmt.Errorf(writeCommandErrorTemplateConstant, writeError)
		}
		emittedCommands++
		return nil
	})
	service.report(source, emittedCommands, runError)
	return emittedCommands, runError
}

// Render executes source on a simulated turtle and writes the drawing as SVG.
func (service *Service) Render(executionContext context.Context, source Source, writer io.Writer, options turtle.RenderOptions) error {
	state := turtle.NewState()
	emittedCommands := 0
	runError := service.execute(executionContext, source, func(command interpreter.Command) error {
		emittedCommands++
		return state.Apply(command)
	})
	service.report(source, emittedCommands, runError)
	if runError != nil {
		return runError
	}
	if renderError := turtle.RenderSVG(state.Drawing(), writer, options); renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, source.Label, renderError)
	}
	return nil
}

func (service *Service) execute(executionContext context.Context, source Source, emit interpreter.EmitFunc) error {
	if service.observer != nil {
		service.observer.RunStarted(source.Label)
	}
	program, parseError := logo.Parse(source.Text)
	if parseError != nil {
		return fmt.Errorf(parseSourceErrorTemplateConstant, source.Label, parseError)
	}
	if runError := service.interpreter.Run(executionContext, program, emit); runError != nil {
		return fmt.Errorf(runSourceErrorTemplateConstant, source.Label, runError)
	}
	return nil
}

func (service *Service) report(source Source, emittedCommands int, runError error) {
	if runError != nil {
		service.logger.Debug(runFailedMessageConstant, zap.String(logFieldProgramLabelConstant, source.Label), zap.Error(runError))
		if service.observer != nil {
			service.observer.RunFailed(source.Label, runError)
		}
		return
	}
	service.logger.Debug(runCompletedMessageConstant, zap.String(logFieldProgramLabelConstant, source.Label), zap.Int(logFieldEmittedCommandsConstant, emittedCommands))
	if service.observer != nil {
		service.observer.RunCompleted(source.Label, emittedCommands)
	}
}
