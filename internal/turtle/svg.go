package turtle

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
)

const (
	// DefaultMargin pads the view box around the drawing.
	DefaultMargin = 20.0

	minimumExtentConstant     = 1.0
	turtleMarkerSizeConstant  = 8.0
	svgHeaderTemplate         = "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"%s %s %s %s\" width=\"%s\" height=\"%s\">\n"
	svgBackgroundTemplate     = "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n"
	svgLineTemplate           = "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"%s\" stroke-linecap=\"round\"/>\n"
	svgTurtleTemplate         = "  <polygon points=\"%s,%s %s,%s %s,%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n"
	svgFooterConstant         = "</svg>\n"
	numberFormatConstant      = 'f'
	numberPrecisionConstant   = 2
	numberBitSizeConstant     = 64
	turtleWingAngleConstant   = 140.0
	defaultBackgroundConstant = "white"
	turtleMarkerColorConstant = "green"
)

// RenderOptions tune SVG output.
type RenderOptions struct {
	Margin     float64
	Background string
	ShowTurtle bool
}

type bounds struct {
	minimumX, minimumY, maximumX, maximumY float64
}

func (area *bounds) include(point Point) {
	area.minimumX = math.Min(area.minimumX, point.X)
	area.minimumY = math.Min(area.minimumY, point.Y)
	area.maximumX = math.Max(area.maximumX, point.X)
	area.maximumY = math.Max(area.maximumY, point.Y)
}

// RenderSVG writes drawing as a standalone SVG document. The view box covers
// every segment and the turtle; the Y axis is flipped so north points up.
func RenderSVG(drawing Drawing, writer io.Writer, options RenderOptions) error {
	margin := options.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	background := options.Background
	if len(background) == 0 {
		background = defaultBackgroundConstant
	}

	position := drawing.Turtle.Position
	area := bounds{minimumX: position.X, minimumY: position.Y, maximumX: position.X, maximumY: position.Y}
	for _, segment := range drawing.Segments {
		area.include(segment.From)
		area.include(segment.To)
	}

	left := area.minimumX - margin
	top := -area.maximumY - margin
	width := math.Max(area.maximumX-area.minimumX, minimumExtentConstant) + 2*margin
	height := math.Max(area.maximumY-area.minimumY, minimumExtentConstant) + 2*margin

	buffered := bufio.NewWriter(writer)
	fmt.Fprintf(buffered, svgHeaderTemplate, formatCoordinate(left), formatCoordinate(top), formatCoordinate(width), formatCoordinate(height), formatCoordinate(width), formatCoordinate(height))
	fmt.Fprintf(buffered, svgBackgroundTemplate, formatCoordinate(left), formatCoordinate(top), formatCoordinate(width), formatCoordinate(height), html.EscapeString(background))
	for _, segment := range drawing.Segments {
		fmt.Fprintf(buffered, svgLineTemplate,
			formatCoordinate(segment.From.X), formatCoordinate(-segment.From.Y),
			formatCoordinate(segment.To.X), formatCoordinate(-segment.To.Y),
			html.EscapeString(segment.Color), formatCoordinate(segment.Width))
	}
	if options.ShowTurtle && drawing.Turtle.Visible {
		writeTurtleMarker(buffered, drawing.Turtle)
	}
	buffered.WriteString(svgFooterConstant)
	return buffered.Flush()
}

func writeTurtleMarker(writer io.Writer, turtle Turtle) {
	tip := offset(turtle.Position, turtle.Heading, turtleMarkerSizeConstant)
	leftWing := offset(turtle.Position, turtle.Heading-turtleWingAngleConstant, turtleMarkerSizeConstant/2)
	rightWing := offset(turtle.Position, turtle.Heading+turtleWingAngleConstant, turtleMarkerSizeConstant/2)
	fmt.Fprintf(writer, svgTurtleTemplate,
		formatCoordinate(tip.X), formatCoordinate(-tip.Y),
		formatCoordinate(leftWing.X), formatCoordinate(-leftWing.Y),
		formatCoordinate(rightWing.X), formatCoordinate(-rightWing.Y),
		turtleMarkerColorConstant)
}

func offset(origin Point, heading float64, distance float64) Point {
	radians := heading * math.Pi / halfTurnDegreesConstant
	return Point{X: origin.X + distance*math.Sin(radians), Y: origin.Y + distance*math.Cos(radians)}
}

func formatCoordinate(value float64) string {
	if value == 0 {
		return "0"
	}
	formatted := strconv.FormatFloat(value, numberFormatConstant, numberPrecisionConstant, numberBitSizeConstant)
	trimmed := trimTrailingZeros(formatted)
	if trimmed == "-0" {
		return "0"
	}
	return trimmed
}

func trimTrailingZeros(formatted string) string {
	end := len(formatted)
	for end > 0 && formatted[end-1] == '0' {
		end--
	}
	if end > 0 && formatted[end-1] == '.' {
		end--
	}
	return formatted[:end]
}
