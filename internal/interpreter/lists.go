package interpreter

import (
	"github.com/temirov/turtle/internal/logo"
)

const (
	listIndexOperationConstant = "list index"
)

func (state *execution) makeList(statement *logo.Statement) error {
	items := make([]Value, 0, len(statement.List))
	for itemIndex := range statement.List {
		item, itemError := state.evaluate(&statement.List[itemIndex])
		if itemError != nil {
			return itemError
		}
		items = append(items, item)
	}
	state.lists[statement.ListName] = items
	return nil
}

func (state *execution) list(name string) ([]Value, error) {
	items, defined := state.lists[name]
	if !defined {
		return nil, &UnboundListError{Name: name}
	}
	return items, nil
}

func (state *execution) index(expression *logo.Expression, listName string, length int, allowEnd bool) (int, error) {
	number, numberError := state.evaluateNumber(expression, listIndexOperationConstant)
	if numberError != nil {
		return 0, numberError
	}
	position, positionError := wholeNumber(number)
	if positionError != nil {
		return 0, positionError
	}
	upperBound := length - 1
	if allowEnd {
		upperBound = length
	}
	if position < 0 || position > upperBound {
		return 0, &IndexError{List: listName, Index: position, Length: length}
	}
	return position, nil
}

func (state *execution) mutateList(statement *logo.Statement) error {
	items, listError := state.list(statement.ListName)
	if listError != nil {
		return listError
	}

	switch statement.Function {
	case logo.ListFunctionSet:
		position, indexError := state.index(statement.Index, statement.ListName, len(items), false)
		if indexError != nil {
			return indexError
		}
		value, valueError := state.evaluateRequired(statement.Value)
		if valueError != nil {
			return valueError
		}
		items[position] = value
	case logo.ListFunctionInsert:
		position, indexError := state.index(statement.Index, statement.ListName, len(items), true)
		if indexError != nil {
			return indexError
		}
		value, valueError := state.evaluateRequired(statement.Value)
		if valueError != nil {
			return valueError
		}
		items = append(items, Value{})
		copy(items[position+1:], items[position:])
		items[position] = value
	case logo.ListFunctionRemove:
		position, indexError := state.index(statement.Index, statement.ListName, len(items), false)
		if indexError != nil {
			return indexError
		}
		items = append(items[:position], items[position+1:]...)
	case logo.ListFunctionRemoveValue:
		value, valueError := state.evaluateRequired(statement.Value)
		if valueError != nil {
			return valueError
		}
		position := -1
		for itemIndex, item := range items {
			if item.Equal(value) {
				position = itemIndex
				break
			}
		}
		if position < 0 {
			return &ValueNotFoundError{List: statement.ListName, Value: value}
		}
		items = append(items[:position], items[position+1:]...)
	default:
		return invalidCommand(string(statement.Function))
	}

	state.lists[statement.ListName] = items
	return nil
}

func (state *execution) queryList(expression *logo.Expression) (Value, error) {
	items, listError := state.list(expression.ListName)
	if listError != nil {
		return Value{}, listError
	}

	switch expression.Function {
	case logo.ListFunctionLength:
		return NumberValue(float64(len(items))), nil
	case logo.ListFunctionEmpty:
		return BooleanValue(len(items) == 0), nil
	case logo.ListFunctionGet:
		position, indexError := state.index(expression.Index, expression.ListName, len(items), false)
		if indexError != nil {
			return Value{}, indexError
		}
		return items[position], nil
	default:
		return Value{}, invalidCommand(string(expression.Function))
	}
}
