package logo

import (
	"errors"
	"fmt"
)

const (
	unexpectedTokenMessageConstant    = "unexpected token"
	invalidCommandMessageConstant     = "invalid command"
	unexpectedEndMessageConstant      = "unexpected end of input"
	invalidDefinitionMessageConstant  = "invalid procedure definition"
	invalidCharacterMessageConstant   = "invalid character"
	invalidTreeMessageConstant        = "invalid program tree"
	parseErrorTemplateConstant        = "line %d, column %d: %v: %s"
	parseErrorWithoutDetailConstant   = "line %d, column %d: %v"
	invalidTreeDetailTemplateConstant = "%w: %v"
)

// ErrUnexpectedToken indicates a token appeared where the grammar does not allow it.
var ErrUnexpectedToken = errors.New(unexpectedTokenMessageConstant)

// ErrInvalidCommand indicates a word that names neither a builtin nor a defined procedure.
var ErrInvalidCommand = errors.New(invalidCommandMessageConstant)

// ErrUnexpectedEnd indicates the source ended inside an incomplete construct.
var ErrUnexpectedEnd = errors.New(unexpectedEndMessageConstant)

// ErrInvalidDefinition indicates a malformed or misplaced procedure definition.
var ErrInvalidDefinition = errors.New(invalidDefinitionMessageConstant)

// ErrInvalidCharacter indicates the lexer met a character outside the Logo alphabet.
var ErrInvalidCharacter = errors.New(invalidCharacterMessageConstant)

// ErrInvalidTree indicates a program tree that cannot be decoded or executed.
var ErrInvalidTree = errors.New(invalidTreeMessageConstant)

// ParseError locates a syntax failure in the source.
type ParseError struct {
	Line   int
	Column int
	Detail string
	Err    error
}

// Error renders the location, the failure kind, and the offending detail.
func (parseError *ParseError) Error() string {
	if len(parseError.Detail) == 0 {
		return fmt.Sprintf(parseErrorWithoutDetailConstant, parseError.Line, parseError.Column, parseError.Err)
	}
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Line, parseError.Column, parseError.Err, parseError.Detail)
}

// Unwrap exposes the failure kind for errors.Is.
func (parseError *ParseError) Unwrap() error {
	return parseError.Err
}

func newParseError(token Token, kind error, detail string) *ParseError {
	return &ParseError{Line: token.Line, Column: token.Column, Detail: detail, Err: kind}
}

func invalidTreeError(cause error) error {
	return fmt.Errorf(invalidTreeDetailTemplateConstant, ErrInvalidTree, cause)
}
