// Package runner implements the command-line operations on Logo programs:
// printing the parsed tree, streaming the turtle commands a program emits,
// and rendering the finished drawing as SVG.
package runner
