package interpreter

import (
	"context"
	"errors"
	"slices"

	"github.com/temirov/turtle/internal/logo"
)

const (
	// DefaultMaxCallDepth bounds procedure recursion when Options leaves it unset.
	DefaultMaxCallDepth = 512

	missingExpressionDetailConstant = "statement is missing an expression"
	repeatOperationConstant         = "repeat"
	colorWhiteConstant              = "white"
	colorBlackConstant              = "black"
	colorRedConstant                = "red"
	colorGreenConstant              = "green"
	colorBlueConstant               = "blue"
	colorCyanConstant               = "cyan"
)

// SupportedColors lists the pen colors accepted by setpencolor.
var SupportedColors = []string{
	colorWhiteConstant,
	colorBlackConstant,
	colorRedConstant,
	colorGreenConstant,
	colorBlueConstant,
	colorCyanConstant,
}

// EmitFunc receives each turtle command as it is produced. Returning an error
// stops the program; Run returns that error unchanged.
type EmitFunc func(Command) error

// Options bound the resources a single run may consume.
type Options struct {
	// MaxCallDepth limits nested procedure calls. Zero selects DefaultMaxCallDepth.
	MaxCallDepth int
	// MaxCommands limits emitted commands. Zero disables the limit.
	MaxCommands int
}

// Interpreter runs programs. It holds no per-run state and is safe for
// concurrent use.
type Interpreter struct {
	options Options
}

type procedure struct {
	parameters []string
	commands   []logo.Statement
}

type emitFailure struct {
	err error
}

func (failure *emitFailure) Error() string {
	return failure.err.Error()
}

func (failure *emitFailure) Unwrap() error {
	return failure.err
}

type execution struct {
	executionContext context.Context
	emit             EmitFunc
	options          Options
	globals          map[string]Value
	frames           []map[string]Value
	procedures       map[string]procedure
	lists            map[string][]Value
	emittedCommands  int
}

// New constructs an Interpreter.
func New(options Options) *Interpreter {
	if options.MaxCallDepth <= 0 {
		options.MaxCallDepth = DefaultMaxCallDepth
	}
	if options.MaxCommands < 0 {
		options.MaxCommands = 0
	}
	return &Interpreter{options: options}
}

// Run executes program, calling emit for every turtle command in order. It
// stops at the first error, when emit fails, or when executionContext is done.
func (interpreter *Interpreter) Run(executionContext context.Context, program logo.Program, emit EmitFunc) error {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if emit == nil {
		emit = func(Command) error { return nil }
	}

	state := &execution{
		executionContext: executionContext,
		emit:             emit,
		options:          interpreter.options,
		globals:          map[string]Value{},
		procedures:       map[string]procedure{},
		lists:            map[string][]Value{},
	}
	for _, statement := range program.Commands {
		if statement.Name == logo.StatementFunctionDef {
			state.define(statement)
		}
	}

	runError := state.executeStatements(program.Commands)
	var failure *emitFailure
	if errors.As(runError, &failure) {
		return failure.err
	}
	return runError
}

// Collect runs program and returns every emitted command.
func (interpreter *Interpreter) Collect(executionContext context.Context, program logo.Program) ([]Command, error) {
	commands := []Command{}
	runError := interpreter.Run(executionContext, program, func(command Command) error {
		commands = append(commands, command)
		return nil
	})
	return commands, runError
}

func (state *execution) executeStatements(statements []logo.Statement) error {
	for statementIndex := range statements {
		if contextError := state.executionContext.Err(); contextError != nil {
			return contextError
		}
		if statementError := state.executeStatement(&statements[statementIndex]); statementError != nil {
			return statementError
		}
	}
	return nil
}

func (state *execution) executeStatement(statement *logo.Statement) error {
	switch statement.Name {
	case logo.StatementFunctionDef:
		state.define(*statement)
		return nil
	case logo.StatementFunctionCall:
		return state.call(statement)
	case logo.StatementMake:
		value, valueError := state.evaluateRequired(statement.Value)
		if valueError != nil {
			return valueError
		}
		state.assign(statement.VarName, value)
		return nil
	case logo.StatementListMake:
		return state.makeList(statement)
	case logo.StatementList:
		return state.mutateList(statement)
	case logo.StatementRepeat:
		return state.repeat(statement)
	case logo.StatementIf:
		condition, conditionError := state.evaluateRequired(statement.Condition)
		if conditionError != nil {
			return conditionError
		}
		if condition.Truthy() {
			return state.executeStatements(statement.Commands)
		}
		return state.executeStatements(statement.ElseCommands)
	case logo.StatementForward, logo.StatementBackward, logo.StatementLeft, logo.StatementRight, logo.StatementSetPenSize:
		amount, amountError := state.evaluateNumber(statement.Value, string(statement.Name))
		if amountError != nil {
			return amountError
		}
		return state.emitCommand(ValueCommand(CommandName(statement.Name), amount))
	case logo.StatementHideTurtle, logo.StatementShowTurtle, logo.StatementPenUp, logo.StatementPenDown:
		return state.emitCommand(Command{Name: CommandName(statement.Name)})
	case logo.StatementSetPosition:
		x, xError := state.evaluateNumber(statement.X, string(statement.Name))
		if xError != nil {
			return xError
		}
		y, yError := state.evaluateNumber(statement.Y, string(statement.Name))
		if yError != nil {
			return yError
		}
		return state.emitCommand(PositionCommand(x, y))
	case logo.StatementSetPenColor:
		if !IsSupportedColor(statement.Color) {
			return &InvalidColorError{Color: statement.Color, Supported: slices.Clone(SupportedColors)}
		}
		return state.emitCommand(ColorCommand(statement.Color))
	case logo.StatementPrint:
		value, valueError := state.evaluateRequired(statement.Value)
		if valueError != nil {
			return valueError
		}
		return state.emitCommand(PrintCommand(value.String()))
	default:
		return invalidCommand(string(statement.Name))
	}
}

// IsSupportedColor reports whether color is in SupportedColors.
func IsSupportedColor(color string) bool {
	return slices.Contains(SupportedColors, color)
}

func (state *execution) emitCommand(command Command) error {
	state.emittedCommands++
	if state.options.MaxCommands > 0 && state.emittedCommands > state.options.MaxCommands {
		return ErrCommandLimitExceeded
	}
	if emitError := state.emit(command); emitError != nil {
		return &emitFailure{err: emitError}
	}
	return nil
}

func (state *execution) repeat(statement *logo.Statement) error {
	count, countError := state.evaluateNumber(statement.Value, repeatOperationConstant)
	if countError != nil {
		return countError
	}
	iterations, iterationsError := wholeNumber(count)
	if iterationsError != nil {
		return iterationsError
	}
	for iteration := 0; iteration < iterations; iteration++ {
		if contextError := state.executionContext.Err(); contextError != nil {
			return contextError
		}
		if bodyError := state.executeStatements(statement.Commands); bodyError != nil {
			return bodyError
		}
	}
	return nil
}

func (state *execution) define(statement logo.Statement) {
	state.procedures[statement.FuncName] = procedure{parameters: statement.Parameters, commands: statement.Commands}
}

func (state *execution) call(statement *logo.Statement) error {
	definition, defined := state.procedures[statement.FuncName]
	if !defined {
		return &UndefinedFunctionError{Name: statement.FuncName}
	}
	if len(definition.parameters) != len(statement.Arguments) {
		return &FunctionArgumentsError{Name: statement.FuncName, Expected: len(definition.parameters), Received: len(statement.Arguments)}
	}
	if len(state.frames) >= state.options.MaxCallDepth {
		return ErrCallDepthExceeded
	}

	frame := make(map[string]Value, len(definition.parameters))
	for argumentIndex, parameter := range definition.parameters {
		argument, argumentError := state.evaluate(&statement.Arguments[argumentIndex])
		if argumentError != nil {
			return argumentError
		}
		frame[parameter] = argument
	}

	state.frames = append(state.frames, frame)
	bodyError := state.executeStatements(definition.commands)
	state.frames = state.frames[:len(state.frames)-1]

	if bodyError == nil || !shouldAttributeToProcedure(bodyError) {
		return bodyError
	}
	return &FunctionExecutionError{Name: statement.FuncName, Err: bodyError}
}

// shouldAttributeToProcedure excludes errors that are not failures of the
// procedure body itself, and errors already attributed to an inner procedure.
func shouldAttributeToProcedure(bodyError error) bool {
	var failure *emitFailure
	var executionError *FunctionExecutionError
	switch {
	case errors.As(bodyError, &failure):
		return false
	case errors.As(bodyError, &executionError):
		return false
	case errors.Is(bodyError, context.Canceled), errors.Is(bodyError, context.DeadlineExceeded):
		return false
	case errors.Is(bodyError, ErrCommandLimitExceeded):
		return false
	default:
		return true
	}
}

// lookup resolves name through the call frames, innermost first, then globals.
func (state *execution) lookup(name string) (Value, error) {
	for frameIndex := len(state.frames) - 1; frameIndex >= 0; frameIndex-- {
		if value, bound := state.frames[frameIndex][name]; bound {
			return value, nil
		}
	}
	if value, bound := state.globals[name]; bound {
		return value, nil
	}
	return Value{}, &UnboundVariableError{Name: name}
}

// assign updates the innermost frame that binds name, or the globals.
func (state *execution) assign(name string, value Value) {
	for frameIndex := len(state.frames) - 1; frameIndex >= 0; frameIndex-- {
		if _, bound := state.frames[frameIndex][name]; bound {
			state.frames[frameIndex][name] = value
			return
		}
	}
	state.globals[name] = value
}
