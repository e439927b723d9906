package logo

import "fmt"

// parseExpression parses a full expression starting at the lowest precedence level.
func (programParser *parser) parseExpression() (*Expression, error) {
	return programParser.parseComparison()
}

func (programParser *parser) parseComparison() (*Expression, error) {
	left, leftError := programParser.parseAdditive()
	if leftError != nil {
		return nil, leftError
	}
	for programParser.binaryOperatorAhead(comparisonOperators) {
		operator := programParser.next().Text
		right, rightError := programParser.parseAdditive()
		if rightError != nil {
			return nil, rightError
		}
		left = &Expression{Kind: ExpressionBinary, Operator: operator, Left: left, Right: right}
	}
	return left, nil
}

func (programParser *parser) parseAdditive() (*Expression, error) {
	left, leftError := programParser.parseMultiplicative()
	if leftError != nil {
		return nil, leftError
	}
	for programParser.binaryOperatorAhead(map[string]bool{OperatorAdd: true, OperatorSubtract: true}) {
		operator := programParser.next().Text
		right, rightError := programParser.parseMultiplicative()
		if rightError != nil {
			return nil, rightError
		}
		left = &Expression{Kind: ExpressionBinary, Operator: operator, Left: left, Right: right}
	}
	return left, nil
}

func (programParser *parser) parseMultiplicative() (*Expression, error) {
	left, leftError := programParser.parsePower()
	if leftError != nil {
		return nil, leftError
	}
	for programParser.binaryOperatorAhead(map[string]bool{OperatorMultiply: true, OperatorDivide: true}) {
		operator := programParser.next().Text
		right, rightError := programParser.parsePower()
		if rightError != nil {
			return nil, rightError
		}
		left = &Expression{Kind: ExpressionBinary, Operator: operator, Left: left, Right: right}
	}
	return left, nil
}

// parsePower is right associative: 2 ^ 3 ^ 2 is 2 ^ 9.
func (programParser *parser) parsePower() (*Expression, error) {
	base, baseError := programParser.parseUnary()
	if baseError != nil {
		return nil, baseError
	}
	if !programParser.binaryOperatorAhead(map[string]bool{OperatorPower: true}) {
		return base, nil
	}
	programParser.next()
	exponent, exponentError := programParser.parsePower()
	if exponentError != nil {
		return nil, exponentError
	}
	return &Expression{Kind: ExpressionBinary, Operator: OperatorPower, Left: base, Right: exponent}, nil
}

func (programParser *parser) parseUnary() (*Expression, error) {
	token := programParser.current()
	if token.Kind == TokenOperator && token.Text == OperatorSubtract {
		programParser.next()
		operand, operandError := programParser.parseUnary()
		if operandError != nil {
			return nil, operandError
		}
		if operand.Kind == ExpressionNumber {
			return NumberLiteral(-operand.Number), nil
		}
		return &Expression{Kind: ExpressionNegate, Operand: operand}, nil
	}
	return programParser.parsePrimary()
}

// binaryOperatorAhead reports whether the next token continues the current
// expression with one of the operators. A minus written as "a -b" starts a
// new negative argument instead.
func (programParser *parser) binaryOperatorAhead(operators map[string]bool) bool {
	token := programParser.current()
	if token.Kind != TokenOperator || !operators[token.Text] {
		return false
	}
	if token.Text == OperatorSubtract && token.SpaceBefore && !token.SpaceAfter {
		return false
	}
	return true
}

func (programParser *parser) parsePrimary() (*Expression, error) {
	token := programParser.current()
	switch token.Kind {
	case TokenNumber:
		programParser.next()
		return NumberLiteral(token.Number), nil
	case TokenVariable:
		programParser.next()
		return VariableReference(token.Text), nil
	case TokenQuotedWord:
		programParser.next()
		return &Expression{Kind: ExpressionWord, Word: token.Text}, nil
	case TokenLeftParenthesis:
		return programParser.parseParenthesized()
	case TokenWord:
		return programParser.parseWordExpression()
	default:
		return nil, programParser.unexpected(token, commandDescriptionExpression)
	}
}

func (programParser *parser) parseParenthesized() (*Expression, error) {
	programParser.next()
	inner := programParser.current()
	if inner.Kind == TokenWord && (inner.Text == keywordAnd || inner.Text == keywordOr) {
		programParser.next()
		operands := []Expression{}
		for programParser.current().Kind != TokenRightParenthesis {
			if programParser.current().Kind == TokenEnd {
				return nil, newParseError(programParser.current(), ErrUnexpectedEnd, commandDescriptionParenthesis)
			}
			operand, operandError := programParser.parseExpression()
			if operandError != nil {
				return nil, operandError
			}
			operands = append(operands, *operand)
		}
		programParser.next()
		return &Expression{Kind: logicalKind(inner.Text), Operands: operands}, nil
	}

	expression, expressionError := programParser.parseExpression()
	if expressionError != nil {
		return nil, expressionError
	}
	if _, closeError := programParser.expect(TokenRightParenthesis, commandDescriptionParenthesis); closeError != nil {
		return nil, closeError
	}
	return expression, nil
}

func (programParser *parser) parseWordExpression() (*Expression, error) {
	token := programParser.next()
	switch token.Text {
	case keywordTrue:
		return &Expression{Kind: ExpressionBoolean, Boolean: true}, nil
	case keywordFalse:
		return &Expression{Kind: ExpressionBoolean, Boolean: false}, nil
	case keywordNot:
		operand, operandError := programParser.parseExpression()
		if operandError != nil {
			return nil, operandError
		}
		return &Expression{Kind: ExpressionNot, Operand: operand}, nil
	case keywordAnd, keywordOr:
		first, firstError := programParser.parseExpression()
		if firstError != nil {
			return nil, firstError
		}
		second, secondError := programParser.parseExpression()
		if secondError != nil {
			return nil, secondError
		}
		return &Expression{Kind: logicalKind(token.Text), Operands: []Expression{*first, *second}}, nil
	case keywordCount, keywordEmptyPredicate:
		nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionListName)
		if nameError != nil {
			return nil, nameError
		}
		function := ListFunctionLength
		if token.Text == keywordEmptyPredicate {
			function = ListFunctionEmpty
		}
		return &Expression{Kind: ExpressionListQuery, ListName: nameToken.Text, Function: function}, nil
	case keywordItem:
		index, indexError := programParser.parseExpression()
		if indexError != nil {
			return nil, indexError
		}
		nameToken, nameError := programParser.expect(TokenQuotedWord, commandDescriptionListName)
		if nameError != nil {
			return nil, nameError
		}
		return &Expression{Kind: ExpressionListQuery, ListName: nameToken.Text, Function: ListFunctionGet, Index: index}, nil
	}

	if _, isProcedure := programParser.procedures[token.Text]; isProcedure {
		return nil, newParseError(token, ErrUnexpectedToken, fmt.Sprintf(procedureUsedAsValueTemplate, token.Text))
	}
	return nil, programParser.unexpected(token, commandDescriptionExpression)
}

func logicalKind(keyword string) ExpressionKind {
	if keyword == keywordAnd {
		return ExpressionAnd
	}
	return ExpressionOr
}
