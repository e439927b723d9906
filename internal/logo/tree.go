package logo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	statementNameMissingTemplateConstant  = "statement %d has no name"
	expressionKindMissingTemplateConstant = "expression has no kind"
)

// StatementName tags a Statement.
type StatementName string

// Statement names understood by the interpreter.
const (
	StatementForward      StatementName = "forward"
	StatementBackward     StatementName = "backward"
	StatementLeft         StatementName = "left"
	StatementRight        StatementName = "right"
	StatementHideTurtle   StatementName = "hideturtle"
	StatementShowTurtle   StatementName = "showturtle"
	StatementPenUp        StatementName = "penup"
	StatementPenDown      StatementName = "pendown"
	StatementSetPosition  StatementName = "setpos"
	StatementSetPenColor  StatementName = "setpencolor"
	StatementSetPenSize   StatementName = "setpensize"
	StatementPrint        StatementName = "print"
	StatementMake         StatementName = "make"
	StatementListMake     StatementName = "list_make"
	StatementList         StatementName = "list"
	StatementRepeat       StatementName = "repeat"
	StatementIf           StatementName = "if"
	StatementFunctionDef  StatementName = "func_def"
	StatementFunctionCall StatementName = "func_call"
)

// ListFunction selects the list operation performed by a list statement or query.
type ListFunction string

// List operations. Mutators appear as statements, queries as expressions.
const (
	ListFunctionSet         ListFunction = "set"
	ListFunctionInsert      ListFunction = "insert"
	ListFunctionRemove      ListFunction = "remove"
	ListFunctionRemoveValue ListFunction = "remove_value"
	ListFunctionLength      ListFunction = "len"
	ListFunctionGet         ListFunction = "get"
	ListFunctionEmpty       ListFunction = "empty"
)

// ExpressionKind tags an Expression.
type ExpressionKind string

// Expression kinds.
const (
	ExpressionNumber    ExpressionKind = "number"
	ExpressionBoolean   ExpressionKind = "boolean"
	ExpressionWord      ExpressionKind = "word"
	ExpressionVariable  ExpressionKind = "variable"
	ExpressionBinary    ExpressionKind = "binary"
	ExpressionNegate    ExpressionKind = "neg"
	ExpressionNot       ExpressionKind = "not"
	ExpressionAnd       ExpressionKind = "and"
	ExpressionOr        ExpressionKind = "or"
	ExpressionListQuery ExpressionKind = "list"
)

// Binary operators.
const (
	OperatorAdd            = "+"
	OperatorSubtract       = "-"
	OperatorMultiply       = "*"
	OperatorDivide         = "/"
	OperatorPower          = "^"
	OperatorGreater        = ">"
	OperatorGreaterOrEqual = ">="
	OperatorLess           = "<"
	OperatorLessOrEqual    = "<="
	OperatorEqual          = "="
	OperatorNotEqual       = "<>"
)

// Program is a parsed Logo source file.
type Program struct {
	Commands []Statement `json:"commands" yaml:"commands"`
}

// Statement is one executable Logo instruction. Only the fields relevant to
// Name are populated.
type Statement struct {
	Name         StatementName `json:"name" yaml:"name"`
	Value        *Expression   `json:"value,omitempty" yaml:"value,omitempty"`
	X            *Expression   `json:"x,omitempty" yaml:"x,omitempty"`
	Y            *Expression   `json:"y,omitempty" yaml:"y,omitempty"`
	Color        string        `json:"color,omitempty" yaml:"color,omitempty"`
	VarName      string        `json:"var_name,omitempty" yaml:"var_name,omitempty"`
	ListName     string        `json:"list_name,omitempty" yaml:"list_name,omitempty"`
	List         []Expression  `json:"list,omitempty" yaml:"list,omitempty"`
	Function     ListFunction  `json:"function,omitempty" yaml:"function,omitempty"`
	Index        *Expression   `json:"index,omitempty" yaml:"index,omitempty"`
	Condition    *Expression   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Commands     []Statement   `json:"commands,omitempty" yaml:"commands,omitempty"`
	ElseCommands []Statement   `json:"else_commands,omitempty" yaml:"else_commands,omitempty"`
	FuncName     string        `json:"func_name,omitempty" yaml:"func_name,omitempty"`
	Parameters   []string      `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Arguments    []Expression  `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Expression is a value-producing node.
type Expression struct {
	Kind     ExpressionKind `json:"kind" yaml:"kind"`
	Number   float64        `json:"number,omitempty" yaml:"number,omitempty"`
	Boolean  bool           `json:"boolean,omitempty" yaml:"boolean,omitempty"`
	Word     string         `json:"word,omitempty" yaml:"word,omitempty"`
	Variable string         `json:"variable,omitempty" yaml:"variable,omitempty"`
	Operator string         `json:"op,omitempty" yaml:"op,omitempty"`
	Left     *Expression    `json:"left,omitempty" yaml:"left,omitempty"`
	Right    *Expression    `json:"right,omitempty" yaml:"right,omitempty"`
	Operand  *Expression    `json:"expr,omitempty" yaml:"expr,omitempty"`
	Operands []Expression   `json:"operands,omitempty" yaml:"operands,omitempty"`
	ListName string         `json:"list_name,omitempty" yaml:"list_name,omitempty"`
	Function ListFunction   `json:"function,omitempty" yaml:"function,omitempty"`
	Index    *Expression    `json:"index,omitempty" yaml:"index,omitempty"`
}

// NumberLiteral builds a number expression.
func NumberLiteral(number float64) *Expression {
	return &Expression{Kind: ExpressionNumber, Number: number}
}

// VariableReference builds a variable expression.
func VariableReference(name string) *Expression {
	return &Expression{Kind: ExpressionVariable, Variable: name}
}

// EncodeProgram renders a program tree as JSON.
func EncodeProgram(program Program) ([]byte, error) {
	return json.Marshal(program)
}

// DecodeProgram reads a JSON program tree. Unknown fields and missing tags
// are reported as ErrInvalidTree.
func DecodeProgram(data []byte) (Program, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var program Program
	if decodeError := decoder.Decode(&program); decodeError != nil {
		return Program{}, invalidTreeError(decodeError)
	}
	if validationError := validateStatements(program.Commands); validationError != nil {
		return Program{}, invalidTreeError(validationError)
	}
	return program, nil
}

func validateStatements(statements []Statement) error {
	for statementIndex := range statements {
		statement := statements[statementIndex]
		if len(statement.Name) == 0 {
			return fmt.Errorf(statementNameMissingTemplateConstant, statementIndex)
		}
		for _, expression := range statement.expressions() {
			if validationError := validateExpression(expression); validationError != nil {
				return validationError
			}
		}
		if validationError := validateStatements(statement.Commands); validationError != nil {
			return validationError
		}
		if validationError := validateStatements(statement.ElseCommands); validationError != nil {
			return validationError
		}
	}
	return nil
}

func validateExpression(expression *Expression) error {
	if expression == nil {
		return nil
	}
	if len(expression.Kind) == 0 {
		return errors.New(expressionKindMissingTemplateConstant)
	}
	for _, child := range []*Expression{expression.Left, expression.Right, expression.Operand, expression.Index} {
		if validationError := validateExpression(child); validationError != nil {
			return validationError
		}
	}
	for operandIndex := range expression.Operands {
		if validationError := validateExpression(&expression.Operands[operandIndex]); validationError != nil {
			return validationError
		}
	}
	return nil
}

func (statement *Statement) expressions() []*Expression {
	expressions := []*Expression{statement.Value, statement.X, statement.Y, statement.Index, statement.Condition}
	for itemIndex := range statement.List {
		expressions = append(expressions, &statement.List[itemIndex])
	}
	for argumentIndex := range statement.Arguments {
		expressions = append(expressions, &statement.Arguments[argumentIndex])
	}
	return expressions
}
