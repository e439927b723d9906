package interpreter

import "strconv"

const (
	valueTrueTextConstant       = "true"
	valueFalseTextConstant      = "false"
	valueKindNumberConstant     = "number"
	valueKindBooleanConstant    = "boolean"
	valueKindWordConstant       = "word"
	numberFormatConstant        = 'f'
	numberPrecisionConstant     = -1
	numberBitSizeConstant       = 64
	integerFormatBaseConstant   = 10
	integralNumberLimitConstant = 1e15
)

// ValueKind identifies the dynamic type of a Value.
type ValueKind int

// Value kinds.
const (
	ValueNumber ValueKind = iota
	ValueBoolean
	ValueWord
)

var valueKindNames = map[ValueKind]string{
	ValueNumber:  valueKindNumberConstant,
	ValueBoolean: valueKindBooleanConstant,
	ValueWord:    valueKindWordConstant,
}

// String names the kind.
func (kind ValueKind) String() string {
	return valueKindNames[kind]
}

// Value is a Logo runtime value.
type Value struct {
	kind    ValueKind
	number  float64
	boolean bool
	word    string
}

// NumberValue wraps a number.
func NumberValue(number float64) Value {
	return Value{kind: ValueNumber, number: number}
}

// BooleanValue wraps a boolean.
func BooleanValue(boolean bool) Value {
	return Value{kind: ValueBoolean, boolean: boolean}
}

// WordValue wraps a word.
func WordValue(word string) Value {
	return Value{kind: ValueWord, word: word}
}

// Kind reports the dynamic type.
func (value Value) Kind() ValueKind {
	return value.kind
}

// Number returns the numeric payload and whether the value is a number.
func (value Value) Number() (float64, bool) {
	return value.number, value.kind == ValueNumber
}

// Truthy reports whether the value selects the then-branch of a conditional.
// Numbers are true when non-zero and words when non-empty.
func (value Value) Truthy() bool {
	switch value.kind {
	case ValueBoolean:
		return value.boolean
	case ValueNumber:
		return value.number != 0
	default:
		return len(value.word) > 0
	}
}

// Equal compares kind and payload.
func (value Value) Equal(other Value) bool {
	if value.kind != other.kind {
		return false
	}
	switch value.kind {
	case ValueNumber:
		return value.number == other.number
	case ValueBoolean:
		return value.boolean == other.boolean
	default:
		return value.word == other.word
	}
}

// String renders the value the way print shows it. Integral numbers drop
// their fractional part.
func (value Value) String() string {
	switch value.kind {
	case ValueNumber:
		return formatNumber(value.number)
	case ValueBoolean:
		if value.boolean {
			return valueTrueTextConstant
		}
		return valueFalseTextConstant
	default:
		return value.word
	}
}

func formatNumber(number float64) string {
	if number == float64(int64(number)) && number < integralNumberLimitConstant && number > -integralNumberLimitConstant {
		return strconv.FormatInt(int64(number), integerFormatBaseConstant)
	}
	return strconv.FormatFloat(number, numberFormatConstant, numberPrecisionConstant, numberBitSizeConstant)
}
