// Package interpreter executes parsed Logo programs and streams the turtle
// commands they produce.
//
// Only commands that affect the turtle are emitted. Variables, procedures,
// lists and control flow are resolved inside the interpreter.
package interpreter
