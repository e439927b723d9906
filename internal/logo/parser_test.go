package logo_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/turtle/internal/logo"
)

const (
	testAliasSubtestTemplateConstant = "%d_%s"
)

func movement(name logo.StatementName, value float64) logo.Statement {
	return logo.Statement{Name: name, Value: logo.NumberLiteral(value)}
}

func TestParseTurtleCommandAliases(testInstance *testing.T) {
	testCases := []struct {
		name     string
		sources  []string
		expected logo.Program
	}{
		{
			name:     "forward",
			sources:  []string{"forward 100", "fd 100", "FD 100"},
			expected: logo.Program{Commands: []logo.Statement{movement(logo.StatementForward, 100)}},
		},
		{
			name:     "backward",
			sources:  []string{"backward 100", "back 100", "bk 100"},
			expected: logo.Program{Commands: []logo.Statement{movement(logo.StatementBackward, 100)}},
		},
		{
			name:     "left",
			sources:  []string{"left 90", "lt 90"},
			expected: logo.Program{Commands: []logo.Statement{movement(logo.StatementLeft, 90)}},
		},
		{
			name:     "right",
			sources:  []string{"right 90", "rt 90"},
			expected: logo.Program{Commands: []logo.Statement{movement(logo.StatementRight, 90)}},
		},
		{
			name:     "showturtle",
			sources:  []string{"showturtle", "st"},
			expected: logo.Program{Commands: []logo.Statement{{Name: logo.StatementShowTurtle}}},
		},
		{
			name:     "hideturtle",
			sources:  []string{"hideturtle", "ht"},
			expected: logo.Program{Commands: []logo.Statement{{Name: logo.StatementHideTurtle}}},
		},
		{
			name:     "penup",
			sources:  []string{"penup", "pu"},
			expected: logo.Program{Commands: []logo.Statement{{Name: logo.StatementPenUp}}},
		},
		{
			name:     "pendown",
			sources:  []string{"pendown", "pd"},
			expected: logo.Program{Commands: []logo.Statement{{Name: logo.StatementPenDown}}},
		},
		{
			name:     "setpencolor",
			sources:  []string{"setpencolor red", "setpc \"red", "SETPC Red"},
			expected: logo.Program{Commands: []logo.Statement{{Name: logo.StatementSetPenColor, Color: "red"}}},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testAliasSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			for _, source := range testCase.sources {
				program, parseError := logo.Parse(source)
				require.NoError(testInstance, parseError, source)
				require.Empty(testInstance, cmp.Diff(testCase.expected, program), source)
			}
		})
	}
}

func TestParseSequenceOfCommands(testInstance *testing.T) {
	source := `
		forward 20
		fd 30
		backward 40
		bk 50
		left 60
		lt 70
		right 80
		rt 90
		hideturtle
		ht
		showturtle
		st
		penup
		pu
		pendown
		pd
	`
	expected := logo.Program{Commands: []logo.Statement{
		movement(logo.StatementForward, 20),
		movement(logo.StatementForward, 30),
		movement(logo.StatementBackward, 40),
		movement(logo.StatementBackward, 50),
		movement(logo.StatementLeft, 60),
		movement(logo.StatementLeft, 70),
		movement(logo.StatementRight, 80),
		movement(logo.StatementRight, 90),
		{Name: logo.StatementHideTurtle},
		{Name: logo.StatementHideTurtle},
		{Name: logo.StatementShowTurtle},
		{Name: logo.StatementShowTurtle},
		{Name: logo.StatementPenUp},
		{Name: logo.StatementPenUp},
		{Name: logo.StatementPenDown},
		{Name: logo.StatementPenDown},
	}}

	program, parseError := logo.Parse(source)
	require.NoError(testInstance, parseError)
	require.Empty(testInstance, cmp.Diff(expected, program))
}

func TestParseExpressions(testInstance *testing.T) {
	testCases := []struct {
		name     string
		source   string
		expected *logo.Expression
	}{
		{
			name:   "precedence",
			source: "fd 1 + 2 * 3",
			expected: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorAdd,
				Left:  logo.NumberLiteral(1),
				Right: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorMultiply, Left: logo.NumberLiteral(2), Right: logo.NumberLiteral(3)},
			},
		},
		{
			name:   "power_is_right_associative",
			source: "fd 2 ^ 3 ^ 2",
			expected: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorPower,
				Left:  logo.NumberLiteral(2),
				Right: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorPower, Left: logo.NumberLiteral(3), Right: logo.NumberLiteral(2)},
			},
		},
		{
			name:   "parentheses",
			source: "fd (1 + 2) * :size",
			expected: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorMultiply,
				Left:  &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorAdd, Left: logo.NumberLiteral(1), Right: logo.NumberLiteral(2)},
				Right: logo.VariableReference("size"),
			},
		},
		{
			name:     "negative_literal",
			source:   "fd -10",
			expected: logo.NumberLiteral(-10),
		},
		{
			name:     "negated_variable",
			source:   "fd -:size",
			expected: &logo.Expression{Kind: logo.ExpressionNegate, Operand: logo.VariableReference("size")},
		},
		{
			name:   "subtraction_without_spaces",
			source: "fd 10-4",
			expected: &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorSubtract,
				Left: logo.NumberLiteral(10), Right: logo.NumberLiteral(4)},
		},
		{
			name:     "word",
			source:   "print \"hello",
			expected: &logo.Expression{Kind: logo.ExpressionWord, Word: "hello"},
		},
		{
			name:   "variadic_and",
			source: "print (and true :flag 1 < 2)",
			expected: &logo.Expression{Kind: logo.ExpressionAnd, Operands: []logo.Expression{
				{Kind: logo.ExpressionBoolean, Boolean: true},
				*logo.VariableReference("flag"),
				{Kind: logo.ExpressionBinary, Operator: logo.OperatorLess, Left: logo.NumberLiteral(1), Right: logo.NumberLiteral(2)},
			}},
		},
		{
			name:   "prefix_or_and_not",
			source: "print or not true false",
			expected: &logo.Expression{Kind: logo.ExpressionOr, Operands: []logo.Expression{
				{Kind: logo.ExpressionNot, Operand: &logo.Expression{Kind: logo.ExpressionBoolean, Boolean: true}},
				{Kind: logo.ExpressionBoolean},
			}},
		},
		{
			name:     "list_item",
			source:   "print item 1 \"xs",
			expected: &logo.Expression{Kind: logo.ExpressionListQuery, ListName: "xs", Function: logo.ListFunctionGet, Index: logo.NumberLiteral(1)},
		},
		{
			name:     "list_count",
			source:   "print count \"xs",
			expected: &logo.Expression{Kind: logo.ExpressionListQuery, ListName: "xs", Function: logo.ListFunctionLength},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			program, parseError := logo.Parse(testCase.source)
			require.NoError(testInstance, parseError)
			require.Len(testInstance, program.Commands, 1)
			require.Empty(testInstance, cmp.Diff(testCase.expected, program.Commands[0].Value))
		})
	}
}

func TestParseSetPositionSeparatesNegativeArguments(testInstance *testing.T) {
	program, parseError := logo.Parse("setpos 10 -20")
	require.NoError(testInstance, parseError)

	expected := logo.Statement{Name: logo.StatementSetPosition, X: logo.NumberLiteral(10), Y: logo.NumberLiteral(-20)}
	require.Empty(testInstance, cmp.Diff(expected, program.Commands[0]))
}

func TestParseControlFlowAndProcedures(testInstance *testing.T) {
	source := `
		; draw a row of squares
		square 10 :count
		to square :size :times
		  repeat :times [ fd :size rt 90 ]
		end
		make "count 4
		if :count > 3 [ pu ] [ pd ]
		ifelse :count = 4 [ print "four ] [ print "other ]
		if true [ ht ]
	`

	program, parseError := logo.Parse(source)
	require.NoError(testInstance, parseError)

	expected := logo.Program{Commands: []logo.Statement{
		{
			Name:      logo.StatementFunctionCall,
			FuncName:  "square",
			Arguments: []logo.Expression{*logo.NumberLiteral(10), *logo.VariableReference("count")},
		},
		{
			Name:       logo.StatementFunctionDef,
			FuncName:   "square",
			Parameters: []string{"size", "times"},
			Commands: []logo.Statement{{
				Name:  logo.StatementRepeat,
				Value: logo.VariableReference("times"),
				Commands: []logo.Statement{
					{Name: logo.StatementForward, Value: logo.VariableReference("size")},
					movement(logo.StatementRight, 90),
				},
			}},
		},
		{Name: logo.StatementMake, VarName: "count", Value: logo.NumberLiteral(4)},
		{
			Name:         logo.StatementIf,
			Condition:    &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorGreater, Left: logo.VariableReference("count"), Right: logo.NumberLiteral(3)},
			Commands:     []logo.Statement{{Name: logo.StatementPenUp}},
			ElseCommands: []logo.Statement{{Name: logo.StatementPenDown}},
		},
		{
			Name:         logo.StatementIf,
			Condition:    &logo.Expression{Kind: logo.ExpressionBinary, Operator: logo.OperatorEqual, Left: logo.VariableReference("count"), Right: logo.NumberLiteral(4)},
			Commands:     []logo.Statement{{Name: logo.StatementPrint, Value: &logo.Expression{Kind: logo.ExpressionWord, Word: "four"}}},
			ElseCommands: []logo.Statement{{Name: logo.StatementPrint, Value: &logo.Expression{Kind: logo.ExpressionWord, Word: "other"}}},
		},
		{
			Name:      logo.StatementIf,
			Condition: &logo.Expression{Kind: logo.ExpressionBoolean, Boolean: true},
			Commands:  []logo.Statement{{Name: logo.StatementHideTurtle}},
		},
	}}
	require.Empty(testInstance, cmp.Diff(expected, program))
}

func TestParseListStatements(testInstance *testing.T) {
	source := `makelist "xs [1 2 :a]
makelist "empty []
setitem 0 "xs 5
insertitem 1 "xs 7
removeitem 2 "xs
removevalue "xs 5`

	program, parseError := logo.Parse(source)
	require.NoError(testInstance, parseError)

	expected := []logo.Statement{
		{Name: logo.StatementListMake, ListName: "xs", List: []logo.Expression{*logo.NumberLiteral(1), *logo.NumberLiteral(2), *logo.VariableReference("a")}},
		{Name: logo.StatementListMake, ListName: "empty", List: []logo.Expression{}},
		{Name: logo.StatementList, ListName: "xs", Function: logo.ListFunctionSet, Index: logo.NumberLiteral(0), Value: logo.NumberLiteral(5)},
		{Name: logo.StatementList, ListName: "xs", Function: logo.ListFunctionInsert, Index: logo.NumberLiteral(1), Value: logo.NumberLiteral(7)},
		{Name: logo.StatementList, ListName: "xs", Function: logo.ListFunctionRemove, Index: logo.NumberLiteral(2)},
		{Name: logo.StatementList, ListName: "xs", Function: logo.ListFunctionRemoveValue, Value: logo.NumberLiteral(5)},
	}
	require.Empty(testInstance, cmp.Diff(expected, program.Commands))
}

func TestParseEmptySource(testInstance *testing.T) {
	program, parseError := logo.Parse("  ; only a comment\n")
	require.NoError(testInstance, parseError)
	require.Empty(testInstance, program.Commands)
}

func TestParseErrors(testInstance *testing.T) {
	testCases := []struct {
		name           string
		source         string
		expectedError  error
		expectedLine   int
		expectedColumn int
	}{
		{name: "unknown_command", source: "fd 10\njump 5", expectedError: logo.ErrInvalidCommand, expectedLine: 2, expectedColumn: 1},
		{name: "missing_argument", source: "fd", expectedError: logo.ErrUnexpectedEnd, expectedLine: 1, expectedColumn: 3},
		{name: "unclosed_block", source: "repeat 4 [fd 10", expectedError: logo.ErrUnexpectedEnd, expectedLine: 1, expectedColumn: 16},
		{name: "stray_bracket", source: "fd 10 ]", expectedError: logo.ErrUnexpectedToken, expectedLine: 1, expectedColumn: 7},
		{name: "invalid_character", source: "fd 10 @", expectedError: logo.ErrInvalidCharacter, expectedLine: 1, expectedColumn: 7},
		{name: "missing_end", source: "to box :s\nfd :s", expectedError: logo.ErrInvalidDefinition, expectedLine: 1, expectedColumn: 1},
		{name: "builtin_redefinition", source: "to fd :s\nend", expectedError: logo.ErrInvalidDefinition, expectedLine: 1, expectedColumn: 4},
		{name: "nested_definition", source: "repeat 2 [ to box\nend ]", expectedError: logo.ErrInvalidDefinition, expectedLine: 1, expectedColumn: 12},
		{name: "duplicate_parameter", source: "to box :s :s\nend", expectedError: logo.ErrInvalidDefinition, expectedLine: 1, expectedColumn: 11},
		{name: "make_without_quote", source: "make x 1", expectedError: logo.ErrUnexpectedToken, expectedLine: 1, expectedColumn: 6},
		{name: "procedure_as_value", source: "to box\nend\nfd box", expectedError: logo.ErrUnexpectedToken, expectedLine: 3, expectedColumn: 4},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, parseError := logo.Parse(testCase.source)
			require.Error(testInstance, parseError)
			require.ErrorIs(testInstance, parseError, testCase.expectedError)

			var locatedError *logo.ParseError
			require.True(testInstance, errors.As(parseError, &locatedError))
			require.Equal(testInstance, testCase.expectedLine, locatedError.Line)
			require.Equal(testInstance, testCase.expectedColumn, locatedError.Column)
		})
	}
}

func TestDecodeProgram(testInstance *testing.T) {
	source := "repeat 4 [fd 50 rt 90]\nsetpc blue"
	program, parseError := logo.Parse(source)
	require.NoError(testInstance, parseError)

	encoded, encodeError := logo.EncodeProgram(program)
	require.NoError(testInstance, encodeError)

	decoded, decodeError := logo.DecodeProgram(encoded)
	require.NoError(testInstance, decodeError)
	require.Empty(testInstance, cmp.Diff(program, decoded))

	invalidDocuments := []string{
		`{"commands": [{"value": {"kind": "number", "number": 1}}]}`,
		`{"commands": [{"name": "forward", "value": {"number": 1}}]}`,
		`{"commands": [{"name": "forward", "speed": 3}]}`,
		`[1, 2, 3]`,
	}
	for _, document := range invalidDocuments {
		_, invalidError := logo.DecodeProgram([]byte(document))
		require.ErrorIs(testInstance, invalidError, logo.ErrInvalidTree, document)
	}
}

func TestEncodeProcedureDefinitionAndCall(testInstance *testing.T) {
	program, parseError := logo.Parse("to sq :size\nfd :size\nend\nsq 5")
	require.NoError(testInstance, parseError)

	encoded, encodeError := logo.EncodeProgram(program)
	require.NoError(testInstance, encodeError)
	require.JSONEq(testInstance, `{"commands":[
		{"name":"func_def","func_name":"sq","parameters":["size"],
		 "commands":[{"name":"forward","value":{"kind":"variable","variable":"size"}}]},
		{"name":"func_call","func_name":"sq","arguments":[{"kind":"number","number":5}]}
	]}`, string(encoded))
}
