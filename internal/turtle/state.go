package turtle

import (
	"fmt"
	"math"

	"github.com/temirov/turtle/internal/interpreter"
)

const (
	defaultPenColorConstant    = "black"
	defaultPenWidthConstant    = 1.0
	fullTurnDegreesConstant    = 360.0
	halfTurnDegreesConstant    = 180.0
	unsupportedCommandTemplate = "unsupported turtle command %q"
	negativePenWidthTemplate   = "pen size must not be negative, received %v"
)

// Point is a position on the drawing plane. The turtle starts at the origin
// and positive Y points north.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a straight line drawn while the pen was down.
type Segment struct {
	From  Point   `json:"from"`
	To    Point   `json:"to"`
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Turtle is the pose and pen of the turtle.
type Turtle struct {
	Position Point   `json:"position"`
	Heading  float64 `json:"heading"`
	PenDown  bool    `json:"pen_down"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Visible  bool    `json:"visible"`
}

// Drawing is the accumulated result of applying commands.
type Drawing struct {
	Segments []Segment `json:"segments"`
	Output   []string  `json:"output"`
	Turtle   Turtle    `json:"turtle"`
}

// State replays commands. Heading is measured in degrees clockwise from north.
type State struct {
	turtle   Turtle
	segments []Segment
	output   []string
}

// NewState returns a turtle at the origin facing north with the pen down.
func NewState() *State {
	return &State{turtle: Turtle{
		PenDown: true,
		Color:   defaultPenColorConstant,
		Width:   defaultPenWidthConstant,
		Visible: true,
	}}
}

// Apply executes a single command.
func (state *State) Apply(command interpreter.Command) error {
	switch command.Name {
	case interpreter.CommandForward:
		state.move(command.NumericValue())
	case interpreter.CommandBackward:
		state.move(-command.NumericValue())
	case interpreter.CommandLeft:
		state.turn(-command.NumericValue())
	case interpreter.CommandRight:
		state.turn(command.NumericValue())
	case interpreter.CommandPenUp:
		state.turtle.PenDown = false
	case interpreter.CommandPenDown:
		state.turtle.PenDown = true
	case interpreter.CommandHideTurtle:
		state.turtle.Visible = false
	case interpreter.CommandShowTurtle:
		state.turtle.Visible = true
	case interpreter.CommandSetPosition:
		x, y := command.Coordinates()
		state.moveTo(Point{X: x, Y: y})
	case interpreter.CommandSetPenColor:
		state.turtle.Color = command.Color
	case interpreter.CommandSetPenSize:
		width := command.NumericValue()
		if width < 0 {
			return fmt.Errorf(negativePenWidthTemplate, width)
		}
		state.turtle.Width = width
	case interpreter.CommandPrint:
		state.output = append(state.output, command.PrintedText())
	default:
		return fmt.Errorf(unsupportedCommandTemplate, command.Name)
	}
	return nil
}

// Drawing returns a snapshot of everything drawn so far.
func (state *State) Drawing() Drawing {
	segments := make([]Segment, len(state.segments))
	copy(segments, state.segments)
	output := make([]string, len(state.output))
	copy(output, state.output)
	return Drawing{Segments: segments, Output: output, Turtle: state.turtle}
}

func (state *State) move(distance float64) {
	radians := state.turtle.Heading * math.Pi / halfTurnDegreesConstant
	destination := Point{
		X: state.turtle.Position.X + distance*math.Sin(radians),
		Y: state.turtle.Position.Y + distance*math.Cos(radians),
	}
	state.moveTo(destination)
}

func (state *State) moveTo(destination Point) {
	if state.turtle.PenDown {
		state.segments = append(state.segments, Segment{
			From:  state.turtle.Position,
			To:    destination,
			Color: state.turtle.Color,
			Width: state.turtle.Width,
		})
	}
	state.turtle.Position = destination
}

func (state *State) turn(degrees float64) {
	heading := math.Mod(state.turtle.Heading+degrees, fullTurnDegreesConstant)
	if heading < 0 {
		heading += fullTurnDegreesConstant
	}
	state.turtle.Heading = heading
}
