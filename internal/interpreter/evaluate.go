package interpreter

import (
	"math"

	"github.com/temirov/turtle/internal/logo"
)

const (
	negateOperationConstant = "negation"

	// maximumIntegralNumber is the largest magnitude at which every integer is
	// exactly representable as a float64.
	maximumIntegralNumber = 1 << 53
)

func (state *execution) evaluateRequired(expression *logo.Expression) (Value, error) {
	if expression == nil {
		return Value{}, invalidTree(missingExpressionDetailConstant)
	}
	return state.evaluate(expression)
}

func (state *execution) evaluateNumber(expression *logo.Expression, operation string) (float64, error) {
	value, valueError := state.evaluateRequired(expression)
	if valueError != nil {
		return 0, valueError
	}
	number, isNumber := value.Number()
	if !isNumber {
		return 0, &TypeError{Operation: operation, Expected: ValueNumber, Received: value}
	}
	return number, nil
}

func (state *execution) evaluate(expression *logo.Expression) (Value, error) {
	switch expression.Kind {
	case logo.ExpressionNumber:
		return NumberValue(expression.Number), nil
	case logo.ExpressionBoolean:
		return BooleanValue(expression.Boolean), nil
	case logo.ExpressionWord:
		return WordValue(expression.Word), nil
	case logo.ExpressionVariable:
		return state.lookup(expression.Variable)
	case logo.ExpressionBinary:
		return state.evaluateBinary(expression)
	case logo.ExpressionNegate:
		operand, operandError := state.evaluateNumber(expression.Operand, negateOperationConstant)
		if operandError != nil {
			return Value{}, operandError
		}
		return NumberValue(-operand), nil
	case logo.ExpressionNot:
		operand, operandError := state.evaluateRequired(expression.Operand)
		if operandError != nil {
			return Value{}, operandError
		}
		return BooleanValue(!operand.Truthy()), nil
	case logo.ExpressionAnd:
		for operandIndex := range expression.Operands {
			operand, operandError := state.evaluate(&expression.Operands[operandIndex])
			if operandError != nil {
				return Value{}, operandError
			}
			if !operand.Truthy() {
				return BooleanValue(false), nil
			}
		}
		return BooleanValue(true), nil
	case logo.ExpressionOr:
		for operandIndex := range expression.Operands {
			operand, operandError := state.evaluate(&expression.Operands[operandIndex])
			if operandError != nil {
				return Value{}, operandError
			}
			if operand.Truthy() {
				return BooleanValue(true), nil
			}
		}
		return BooleanValue(false), nil
	case logo.ExpressionListQuery:
		return state.queryList(expression)
	default:
		return Value{}, invalidTree(string(expression.Kind))
	}
}

func (state *execution) evaluateBinary(expression *logo.Expression) (Value, error) {
	switch expression.Operator {
	case logo.OperatorEqual, logo.OperatorNotEqual:
		left, leftError := state.evaluateRequired(expression.Left)
		if leftError != nil {
			return Value{}, leftError
		}
		right, rightError := state.evaluateRequired(expression.Right)
		if rightError != nil {
			return Value{}, rightError
		}
		equal := left.Equal(right)
		if expression.Operator == logo.OperatorNotEqual {
			return BooleanValue(!equal), nil
		}
		return BooleanValue(equal), nil
	}

	left, leftError := state.evaluateNumber(expression.Left, expression.Operator)
	if leftError != nil {
		return Value{}, leftError
	}
	right, rightError := state.evaluateNumber(expression.Right, expression.Operator)
	if rightError != nil {
		return Value{}, rightError
	}

	switch expression.Operator {
	case logo.OperatorAdd:
		return finiteNumber(left + right)
	case logo.OperatorSubtract:
		return finiteNumber(left - right)
	case logo.OperatorMultiply:
		return finiteNumber(left * right)
	case logo.OperatorDivide:
		if right == 0 {
			return Value{}, ErrDivisionByZero
		}
		return finiteNumber(left / right)
	case logo.OperatorPower:
		return finiteNumber(math.Pow(left, right))
	case logo.OperatorGreater:
		return BooleanValue(left > right), nil
	case logo.OperatorGreaterOrEqual:
		return BooleanValue(left >= right), nil
	case logo.OperatorLess:
		return BooleanValue(left < right), nil
	case logo.OperatorLessOrEqual:
		return BooleanValue(left <= right), nil
	default:
		return Value{}, invalidTree(expression.Operator)
	}
}

func finiteNumber(number float64) (Value, error) {
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return Value{}, ErrNumberOutOfRange
	}
	return NumberValue(number), nil
}

// wholeNumber truncates number toward zero, rejecting magnitudes that do not
// convert exactly to int.
func wholeNumber(number float64) (int, error) {
	truncated := math.Trunc(number)
	if math.IsNaN(truncated) || math.Abs(truncated) > maximumIntegralNumber {
		return 0, ErrNumberOutOfRange
	}
	return int(truncated), nil
}
