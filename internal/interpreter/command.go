package interpreter

import "github.com/temirov/turtle/internal/logo"

// CommandName identifies a turtle command.
type CommandName string

// Turtle commands emitted by the interpreter.
const (
	CommandForward     CommandName = CommandName(logo.StatementForward)
	CommandBackward    CommandName = CommandName(logo.StatementBackward)
	CommandLeft        CommandName = CommandName(logo.StatementLeft)
	CommandRight       CommandName = CommandName(logo.StatementRight)
	CommandHideTurtle  CommandName = CommandName(logo.StatementHideTurtle)
	CommandShowTurtle  CommandName = CommandName(logo.StatementShowTurtle)
	CommandPenUp       CommandName = CommandName(logo.StatementPenUp)
	CommandPenDown     CommandName = CommandName(logo.StatementPenDown)
	CommandSetPosition CommandName = CommandName(logo.StatementSetPosition)
	CommandSetPenColor CommandName = CommandName(logo.StatementSetPenColor)
	CommandSetPenSize  CommandName = CommandName(logo.StatementSetPenSize)
	CommandPrint       CommandName = CommandName(logo.StatementPrint)
)

// Command is one instruction for the turtle, ready to be serialized to a client.
// Value carries distances, angles and pen sizes; X and Y carry setpos
// coordinates; Color carries setpencolor; Text carries printed output.
type Command struct {
	Name  CommandName `json:"name"`
	Value *float64    `json:"value,omitempty"`
	X     *float64    `json:"x,omitempty"`
	Y     *float64    `json:"y,omitempty"`
	Color string      `json:"color,omitempty"`
	Text  *string     `json:"text,omitempty"`
}

// ValueCommand builds a command carrying a single numeric value.
func ValueCommand(name CommandName, value float64) Command {
	return Command{Name: name, Value: &value}
}

// PositionCommand builds a setpos command.
func PositionCommand(x float64, y float64) Command {
	return Command{Name: CommandSetPosition, X: &x, Y: &y}
}

// ColorCommand builds a setpencolor command.
func ColorCommand(color string) Command {
	return Command{Name: CommandSetPenColor, Color: color}
}

// PrintCommand builds a print command.
func PrintCommand(text string) Command {
	return Command{Name: CommandPrint, Text: &text}
}

// NumericValue returns Value or zero when absent.
func (command Command) NumericValue() float64 {
	if command.Value == nil {
		return 0
	}
	return *command.Value
}

// Coordinates returns X and Y, zero when absent.
func (command Command) Coordinates() (float64, float64) {
	var x, y float64
	if command.X != nil {
		x = *command.X
	}
	if command.Y != nil {
		y = *command.Y
	}
	return x, y
}

// PrintedText returns Text or the empty string.
func (command Command) PrintedText() string {
	if command.Text == nil {
		return ""
	}
	return *command.Text
}
