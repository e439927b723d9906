package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/turtle/internal/logo"
)

const (
	invalidCommandMessageConstant        = "invalid command"
	divisionByZeroMessageConstant        = "division by zero"
	numberOutOfRangeMessageConstant      = "number out of range"
	callDepthExceededMessageConstant     = "maximum procedure call depth exceeded"
	commandLimitExceededMessageConstant  = "maximum number of turtle commands exceeded"
	unboundVariableTemplateConstant      = "variable %q is not defined"
	unboundListTemplateConstant          = "list %q is not defined"
	undefinedFunctionTemplateConstant    = "procedure %q is not defined"
	functionArgumentsTemplateConstant    = "procedure %q expects %d arguments, received %d"
	functionExecutionTemplateConstant    = "error in procedure %q: %v"
	invalidColorTemplateConstant         = "color %q is not supported; use one of: %s"
	typeErrorTemplateConstant            = "%s expects a %s, received %s %q"
	indexErrorTemplateConstant           = "index %d is out of range for list %q of length %d"
	valueNotFoundTemplateConstant        = "value %s is not in list %q"
	invalidCommandDetailTemplateConstant = "%w: %s"
	supportedColorsSeparatorConstant     = ", "
)

// ErrInvalidCommand indicates a statement or list operation the interpreter does not know.
var ErrInvalidCommand = errors.New(invalidCommandMessageConstant)

// ErrInvalidTree indicates a malformed program tree. It is the same sentinel the
// logo package uses when decoding trees.
var ErrInvalidTree = logo.ErrInvalidTree

// ErrDivisionByZero indicates a division with a zero divisor.
var ErrDivisionByZero = errors.New(divisionByZeroMessageConstant)

// ErrNumberOutOfRange indicates arithmetic that overflowed or has no real
// result, or a count or index too large to use.
var ErrNumberOutOfRange = errors.New(numberOutOfRangeMessageConstant)

// ErrCallDepthExceeded indicates runaway recursion.
var ErrCallDepthExceeded = errors.New(callDepthExceededMessageConstant)

// ErrCommandLimitExceeded indicates a program emitted more commands than allowed.
var ErrCommandLimitExceeded = errors.New(commandLimitExceededMessageConstant)

// UnboundVariableError reports a reference to an undefined variable.
type UnboundVariableError struct {
	Name string
}

func (unboundError *UnboundVariableError) Error() string {
	return fmt.Sprintf(unboundVariableTemplateConstant, unboundError.Name)
}

// UnboundListError reports an operation on an undefined list.
type UnboundListError struct {
	Name string
}

func (unboundError *UnboundListError) Error() string {
	return fmt.Sprintf(unboundListTemplateConstant, unboundError.Name)
}

// UndefinedFunctionError reports a call to an undefined procedure.
type UndefinedFunctionError struct {
	Name string
}

func (undefinedError *UndefinedFunctionError) Error() string {
	return fmt.Sprintf(undefinedFunctionTemplateConstant, undefinedError.Name)
}

// FunctionArgumentsError reports an arity mismatch.
type FunctionArgumentsError struct {
	Name     string
	Expected int
	Received int
}

func (argumentsError *FunctionArgumentsError) Error() string {
	return fmt.Sprintf(functionArgumentsTemplateConstant, argumentsError.Name, argumentsError.Expected, argumentsError.Received)
}

// FunctionExecutionError wraps a failure raised inside a procedure body.
type FunctionExecutionError struct {
	Name string
	Err  error
}

func (executionError *FunctionExecutionError) Error() string {
	return fmt.Sprintf(functionExecutionTemplateConstant, executionError.Name, executionError.Err)
}

// Unwrap exposes the underlying failure.
func (executionError *FunctionExecutionError) Unwrap() error {
	return executionError.Err
}

// InvalidColorError reports a pen color outside the supported palette.
type InvalidColorError struct {
	Color     string
	Supported []string
}

func (colorError *InvalidColorError) Error() string {
	return fmt.Sprintf(invalidColorTemplateConstant, colorError.Color, strings.Join(colorError.Supported, supportedColorsSeparatorConstant))
}

// TypeError reports an operand of the wrong kind.
type TypeError struct {
	Operation string
	Expected  ValueKind
	Received  Value
}

func (typeError *TypeError) Error() string {
	return fmt.Sprintf(typeErrorTemplateConstant, typeError.Operation, typeError.Expected, typeError.Received.Kind(), typeError.Received.String())
}

// IndexError reports an out of range list index.
type IndexError struct {
	List   string
	Index  int
	Length int
}

func (indexError *IndexError) Error() string {
	return fmt.Sprintf(indexErrorTemplateConstant, indexError.Index, indexError.List, indexError.Length)
}

// ValueNotFoundError reports removevalue of a value the list does not hold.
type ValueNotFoundError struct {
	List  string
	Value Value
}

func (notFoundError *ValueNotFoundError) Error() string {
	return fmt.Sprintf(valueNotFoundTemplateConstant, notFoundError.Value.String(), notFoundError.List)
}

func invalidCommand(detail string) error {
	return fmt.Errorf(invalidCommandDetailTemplateConstant, ErrInvalidCommand, detail)
}

func invalidTree(detail string) error {
	return fmt.Errorf(invalidCommandDetailTemplateConstant, ErrInvalidTree, detail)
}
