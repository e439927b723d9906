package turtle_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/logo"
	"github.com/temirov/turtle/internal/turtle"
)

const coordinateToleranceConstant = 1e-9

func replay(testInstance *testing.T, source string) turtle.Drawing {
	testInstance.Helper()
	program, parseError := logo.Parse(source)
	require.NoError(testInstance, parseError)
	commands, runError := interpreter.New(interpreter.Options{}).Collect(context.Background(), program)
	require.NoError(testInstance, runError)

	state := turtle.NewState()
	for _, command := range commands {
		require.NoError(testInstance, state.Apply(command))
	}
	return state.Drawing()
}

func requirePoint(testInstance *testing.T, expected turtle.Point, actual turtle.Point) {
	testInstance.Helper()
	require.InDelta(testInstance, expected.X, actual.X, coordinateToleranceConstant)
	require.InDelta(testInstance, expected.Y, actual.Y, coordinateToleranceConstant)
}

func TestStateDrawsSquare(testInstance *testing.T) {
	drawing := replay(testInstance, "repeat 4 [fd 10 rt 90]")

	require.Len(testInstance, drawing.Segments, 4)
	requirePoint(testInstance, turtle.Point{X: 0, Y: 10}, drawing.Segments[0].To)
	requirePoint(testInstance, turtle.Point{X: 10, Y: 10}, drawing.Segments[1].To)
	requirePoint(testInstance, turtle.Point{X: 10, Y: 0}, drawing.Segments[2].To)
	requirePoint(testInstance, turtle.Point{X: 0, Y: 0}, drawing.Segments[3].To)
	requirePoint(testInstance, turtle.Point{}, drawing.Turtle.Position)
	require.InDelta(testInstance, 0, drawing.Turtle.Heading, coordinateToleranceConstant)
}

func TestStateHonorsPenState(testInstance *testing.T) {
	drawing := replay(testInstance, "pu fd 5 pd setpc red setpensize 3 lt 90 fd 5 setpos 0 0 ht print \"done")

	require.Len(testInstance, drawing.Segments, 2)
	require.Equal(testInstance, "red", drawing.Segments[0].Color)
	require.InDelta(testInstance, 3, drawing.Segments[0].Width, coordinateToleranceConstant)
	requirePoint(testInstance, turtle.Point{X: 0, Y: 5}, drawing.Segments[0].From)
	requirePoint(testInstance, turtle.Point{X: -5, Y: 5}, drawing.Segments[0].To)
	requirePoint(testInstance, turtle.Point{}, drawing.Segments[1].To)
	require.InDelta(testInstance, 270, drawing.Turtle.Heading, coordinateToleranceConstant)
	require.False(testInstance, drawing.Turtle.Visible)
	require.Equal(testInstance, []string{"done"}, drawing.Output)
}

func TestStateRejectsInvalidCommands(testInstance *testing.T) {
	state := turtle.NewState()
	require.Error(testInstance, state.Apply(interpreter.ValueCommand(interpreter.CommandSetPenSize, -1)))
	require.Error(testInstance, state.Apply(interpreter.Command{Name: "spin"}))
}

func TestRenderSVG(testInstance *testing.T) {
	drawing := replay(testInstance, "setpc blue fd 100 rt 90 fd 50")

	var output bytes.Buffer
	require.NoError(testInstance, turtle.RenderSVG(drawing, &output, turtle.RenderOptions{Margin: 10, ShowTurtle: true}))

	document := output.String()
	require.True(testInstance, strings.HasPrefix(document, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"-10 -110 70 120\""))
	require.Contains(testInstance, document, "<line x1=\"0\" y1=\"0\" x2=\"0\" y2=\"-100\" stroke=\"blue\" stroke-width=\"1\"")
	require.Contains(testInstance, document, "<line x1=\"0\" y1=\"-100\" x2=\"50\" y2=\"-100\" stroke=\"blue\"")
	require.Contains(testInstance, document, "<polygon")
	require.True(testInstance, strings.HasSuffix(document, "</svg>\n"))
}

func TestRenderSVGOfEmptyDrawing(testInstance *testing.T) {
	var output bytes.Buffer
	require.NoError(testInstance, turtle.RenderSVG(turtle.NewState().Drawing(), &output, turtle.RenderOptions{}))
	require.Contains(testInstance, output.String(), "viewBox=\"-20 -20 41 41\"")
	require.NotContains(testInstance, output.String(), "<line")
}
