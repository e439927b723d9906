package logo

import (
	"errors"
	"fmt"
	"strings"
)

const (
	keywordTo             = "to"
	keywordEnd            = "end"
	keywordTrue           = "true"
	keywordFalse          = "false"
	keywordNot            = "not"
	keywordAnd            = "and"
	keywordOr             = "or"
	keywordIf             = "if"
	keywordIfElse         = "ifelse"
	keywordRepeat         = "repeat"
	keywordMake           = "make"
	keywordMakeList       = "makelist"
	keywordSetItem        = "setitem"
	keywordInsertItem     = "insertitem"
	keywordRemoveItem     = "removeitem"
	keywordRemoveValue    = "removevalue"
	keywordCount          = "count"
	keywordItem           = "item"
	keywordEmptyPredicate = "emptyp"

	expectedTemplateConstant        = "expected %s, found %q"
	builtinRedefinedTemplate        = "%q is a builtin command"
	nestedDefinitionDetailConstant  = "procedures can only be defined at top level"
	missingEndDetailTemplate        = "procedure %q is missing end"
	duplicateParameterTemplate      = "duplicate parameter %q"
	procedureUsedAsValueTemplate    = "procedure %q does not output a value"
	commandDescriptionExpression    = "expression"
	commandDescriptionListName      = "quoted list name"
	commandDescriptionVariableName  = "quoted variable name"
	commandDescriptionColor         = "color name"
	commandDescriptionBlock         = "["
	commandDescriptionBlockEnd      = "]"
	commandDescriptionParenthesis   = ")"
	commandDescriptionProcedureName = "procedure name"
)

// commandAliases maps every accepted spelling of a turtle command onto its statement name.
var commandAliases = map[string]StatementName{
	"forward":     StatementForward,
	"fd":          StatementForward,
	"backward":    StatementBackward,
	"back":        StatementBackward,
	"bk":          StatementBackward,
	"left":        StatementLeft,
	"lt":          StatementLeft,
	"right":       StatementRight,
	"rt":          StatementRight,
	"hideturtle":  StatementHideTurtle,
	"ht":          StatementHideTurtle,
	"showturtle":  StatementShowTurtle,
	"st":          StatementShowTurtle,
	"penup":       StatementPenUp,
	"pu":          StatementPenUp,
	"pendown":     StatementPenDown,
	"pd":          StatementPenDown,
	"setpos":      StatementSetPosition,
	"setxy":       StatementSetPosition,
	"setpencolor": StatementSetPenColor,
	"setpc":       StatementSetPenColor,
	"setpensize":  StatementSetPenSize,
	"setps":       StatementSetPenSize,
	"print":       StatementPrint,
	"pr":          StatementPrint,
}

var reservedWords = map[string]bool{
	keywordTo:             true,
	keywordEnd:            true,
	keywordTrue:           true,
	keywordFalse:          true,
	keywordNot:            true,
	keywordAnd:            true,
	keywordOr:             true,
	keywordIf:             true,
	keywordIfElse:         true,
	keywordRepeat:         true,
	keywordMake:           true,
	keywordMakeList:       true,
	keywordSetItem:        true,
	keywordInsertItem:     true,
	keywordRemoveItem:     true,
	keywordRemoveValue:    true,
	keywordCount:          true,
	keywordItem:           true,
	keywordEmptyPredicate: true,
}

var comparisonOperators = map[string]bool{
	OperatorEqual:          true,
	OperatorNotEqual:       true,
	OperatorLess:           true,
	OperatorLessOrEqual:    true,
	OperatorGreater:        true,
	OperatorGreaterOrEqual: true,
}

type parser struct {
	tokens     []Token
	position   int
	procedures map[string]int
}

// Parse turns Logo source into a Program. Procedures may be called before
// their definition; the number of arguments a call consumes is the number of
// parameters its definition declares.
func Parse(source string) (Program, error) {
	tokens, tokenizeError := Tokenize(source)
	if tokenizeError != nil {
		return Program{}, tokenizeError
	}

	procedures, collectError := collectProcedures(tokens)
	if collectError != nil {
		return Program{}, collectError
	}

	programParser := &parser{tokens: tokens, procedures: procedures}
	statements, parseError := programParser.parseStatements(true, false)
	if parseError != nil {
		return Program{}, parseError
	}
	if statements == nil {
		statements = []Statement{}
	}
	return Program{Commands: statements}, nil
}

// collectProcedures records the arity of every top-level definition.
func collectProcedures(tokens []Token) (map[string]int, error) {
	procedures := map[string]int{}
	for tokenIndex := 0; tokenIndex < len(tokens); tokenIndex++ {
		token := tokens[tokenIndex]
		if token.Kind != TokenWord || token.Text != keywordTo {
			continue
		}
		if tokenIndex+1 >= len(tokens) || tokens[tokenIndex+1].Kind != TokenWord {
			return nil, newParseError(token, ErrInvalidDefinition, commandDescriptionProcedureName)
		}
		nameToken := tokens[tokenIndex+1]
		if _, isBuiltin := commandAliases[nameToken.Text]; isBuiltin || reservedWords[nameToken.Text] {
			return nil, newParseError(nameToken, ErrInvalidDefinition, fmt.Sprintf(builtinRedefinedTemplate, nameToken.Text))
		}
		parameterCount := 0
		for parameterIndex := tokenIndex + 2; parameterIndex < len(tokens) && tokens[parameterIndex].Kind == TokenVariable; parameterIndex++ {
			parameterCount++
		}
		procedures[nameToken.Text] = parameterCount
	}
	return procedures, nil
}

func (programParser *parser) current() Token {
	return programParser.tokens[programParser.position]
}

func (programParser *parser) next() Token {
	token := programParser.tokens[programParser.position]
	if token.Kind != TokenEnd {
		programParser.position++
	}
	return token
}

func (programParser *parser) expect(kind TokenKind, description string) (Token, error) {
	token := programParser.current()
	if token.Kind != kind {
		return Token{}, programParser.unexpected(token, description)
	}
	return programParser.next(), nil
}

func (programParser *parser) unexpected(token Token, description string) error {
	if token.Kind == TokenEnd {
		return newParseError(token, ErrUnexpectedEnd, description)
	}
	return newParseError(token, ErrUnexpectedToken, fmt.Sprintf(expectedTemplateConstant, description, token.Text))
}

// parseStatements reads statements until the end of input (topLevel), a
// closing bracket, or the end keyword of a procedure body.
func (programParser *parser) parseStatements(topLevel bool, procedureBody bool) ([]Statement, error) {
	var statements []Statement
	for {
		token := programParser.current()
		switch {
		case token.Kind == TokenEnd:
			if topLevel {
				return statements, nil
			}
			return nil, newParseError(token, ErrUnexpectedEnd, commandDescriptionBlockEnd)
		case token.Kind == TokenRightBracket && !topLevel && !procedureBody:
			return statements, nil
		case token.Kind == TokenWord && token.Text == keywordEnd && procedureBody:
			return statements, nil
		}

		statement, statementError := programParser.parseStatement(topLevel)
		if statementError != nil {
			return nil, statementError
		}
		statements = append(statements, statement)
	}
}

func (programParser *parser) parseBlock() ([]Statement, error) {
	if _, openError := programParser.expect(TokenLeftBracket, commandDescriptionBlock); openError != nil {
		return nil, openError
	}
	statements, blockError := programParser.parseStatements(false, false)
	if blockError != nil {
		return nil, blockError
	}
	programParser.next()
	if statements == nil {
		statements = []Statement{}
	}
	return statements, nil
}

func (programParser *parser) parseStatement(topLevel bool) (Statement, error) {
	token := programParser.current()
	if token.Kind != TokenWord {
		return Statement{}, newParseError(token, ErrUnexpectedToken, token.Text)
	}

	if statementName, isCommand := commandAliases[token.Text]; isCommand {
		programParser.next()
		return programParser.parseTurtleCommand(statementName)
	}

	switch token.Text {
	case keywordTo:
		if !topLevel {
			return Statement{}, newParseError(token, ErrInvalidDefinition, nestedDefinitionDetailConstant)
		}
		return programParser.parseDefinition()
	case keywordRepeat:
		programParser.next()
		return programParser.parseRepeat()
	case keywordIf, keywordIfElse:
		programParser.next()
		return programParser.parseConditional(token.Text == keywordIfElse)
	case keywordMake:
		programParser.next()
		return programParser.parseMake()
	case keywordMakeList:
		programParser.next()
		return programParser.parseMakeList()
	case keywordSetItem:
		programParser.next()
		return programParser.parseIndexedListMutation(ListFunctionSet, true)
	case keywordInsertItem:
		programParser.next()
		return programParser.parseIndexedListMutation(ListFunctionInsert, true)
	case keywordRemoveItem:
		programParser.next()
		return programParser.parseIndexedListMutation(ListFunctionRemove, false)
	case keywordRemoveValue:
		programParser.next()
		return programParser.parseRemoveValue()
	}

	if arity, isProcedure := programParser.procedures[token.Text]; isProcedure {
		programParser.next()
		return programParser.parseCall(token.Text, arity)
	}

	return Statement{}, newParseError(token, ErrInvalidCommand, token.Text)
}

func (programParser *parser) parseTurtleCommand(statementName StatementName) (Statement, error) {
	statement := Statement{Name: statementName}
	switch statementName {
	case StatementForward, StatementBackward, StatementLeft, StatementRight, StatementSetPenSize, StatementPrint:
		value, valueError := programParser.parseExpression()
		if valueError != nil {
			return Statement{}, valueError
		}
		statement.Value = value
	case StatementSetPosition:
		x, xError := programParser.parseExpression()
		if xError != nil {
			return Statement{}, xError
		}
		y, yError := programParser.parseExpression()
		if yError != nil {
			return Statement{}, yError
		}
		statement.X, statement.Y = x, y
	case StatementSetPenColor:
		colorToken := programParser.current()
		if colorToken.Kind != TokenWord && colorToken.Kind != TokenQuotedWord {
			return Statement{}, programParser.unexpected(colorToken, commandDescriptionColor)
		}
		programParser.next()
		statement.Color = strings.ToLower(colorToken.Text)
	}
	return statement, nil
}

func (programParser *parser) parseDefinition() (Statement, error) {
	toToken := programParser.next()
	nameToken := programParser.next()

	statement := Statement{Name: StatementFunctionDef, FuncName: nameToken.Text, Parameters: []string{}}
	seenParameters := map[string]bool{}
	for programParser.current().Kind == TokenVariable {
		parameterToken := programParser.next()
		if seenParameters[parameterToken.Text] {
			return Statement{}, newParseError(parameterToken, ErrInvalidDefinition, fmt.Sprintf(duplicateParameterTemplate, parameterToken.Text))
		}
		seenParameters[parameterToken.Text] = true
		statement.Parameters = append(statement.Parameters, parameterToken.Text)
	}

	body, bodyError := programParser.parseStatements(false, true)
	if bodyError != nil {
		var parseError *ParseError
		if errors.As(bodyError, &parseError) && errors.Is(parseError.Err, ErrUnexpectedEnd) {
			return Statement{}, newParseError(toToken, ErrInvalidDefinition, fmt.Sprintf(missingEndDetailTemplate, nameToken.Text))
		}
		return Statement{}, bodyError
	}
	programParser.next()
	if body == nil {
		body = []Statement{}
	}
	statement.Commands = body
	return statement, nil
}

func (programParser *parser) parseRepeat() (Statement, error) {
	count, countError := programParser.parseExpression()
	if countError != nil {
		return Statement{}, countError
	}
	body, bodyError := programParser.parseBlock()
	if bodyError != nil {
		return Statement{}, bodyError
	}
	return Statement{Name: StatementRepeat, Value: count, Commands: body}, nil
}

func (programParser *parser) parseConditional(requireElse bool) (Statement, error) {
	condition, conditionError := programParser.parseExpression()
	if conditionError != nil {
		return Statement{}, conditionError
	}
	body, bodyError := programParser.parseBlock()
	if bodyError != nil {
		return Statement{}, bodyError
	}

	statement := Statement{Name: StatementIf, Condition: condition, Commands: body}
	if requireElse || programParser.current().Kind == TokenLeftBracket {
		elseBody, elseError := programParser.parseBlock()
		if elseError != nil {
			return Statement{}, elseError
		}
		statement.ElseCommands = elseBody
	}
	return statement, nil
}

func (programParser *parser) parseMake() (Statement, error) {
	nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionVariableName)
	if nameError != nil {
		return Statement{}, nameError
	}
	value, valueError := programParser.parseExpression()
	if valueError != nil {
		return Statement{}, valueError
	}
	return Statement{Name: StatementMake, VarName: nameToken.Text, Value: value}, nil
}

func (programParser *parser) parseMakeList() (Statement, error) {
	nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionListName)
	if nameError != nil {
		return Statement{}, nameError
	}
	if _, openError := programParser.expect(TokenLeftBracket, commandDescriptionBlock); openError != nil {
		return Statement{}, openError
	}

	items := []Expression{}
	for programParser.current().Kind != TokenRightBracket {
		if programParser.current().Kind == TokenEnd {
			return Statement{}, newParseError(programParser.current(), ErrUnexpectedEnd, commandDescriptionBlockEnd)
		}
		item, itemError := programParser.parseExpression()
		if itemError != nil {
			return Statement{}, itemError
		}
		items = append(items, *item)
	}
	programParser.next()
	return Statement{Name: StatementListMake, ListName: nameToken.Text, List: items}, nil
}

func (programParser *parser) parseIndexedListMutation(function ListFunction, takesValue bool) (Statement, error) {
	index, indexError := programParser.parseExpression()
	if indexError != nil {
		return Statement{}, indexError
	}
	nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionListName)
	if nameError != nil {
		return Statement{}, nameError
	}
	statement := Statement{Name: StatementList, ListName: nameToken.Text, Function: function, Index: index}
	if takesValue {
		value, valueError := programParser.parseExpression()
		if valueError != nil {
			return Statement{}, valueError
		}
		statement.Value = value
	}
	return statement, nil
}

func (programParser *parser) parseRemoveValue() (Statement, error) {
	nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionListName)
	if nameError != nil {
		return Statement{}, nameError
	}
	value, valueError := programParser.parseExpression()
	if valueError != nil {
		return Statement{}, valueError
	}
	return Statement{Name: StatementList, ListName: nameToken.Text, Function: ListFunctionRemoveValue, Value: value}, nil
}

func (programParser *parser) parseCall(name string, arity int) (Statement, error) {
	arguments := make([]Expression, 0, arity)
	for argumentIndex := 0; argumentIndex < arity; argumentIndex++ {
		argument, argumentError := programParser.parseExpression()
		if argumentError != nil {
			return Statement{}, argumentError
		}
		arguments = append(arguments, *argument)
	}
	return Statement{Name: StatementFunctionCall, FuncName: name, Arguments: arguments}, nil
}
