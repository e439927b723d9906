// Package cli constructs the turtle command-line interface, wiring the Cobra
// command hierarchy, configuration loader, and structured logging primitives.
// Configuration merges embedded defaults, an optional config.yaml, and
// TURTLE_-prefixed environment variables, each layer overriding the one before.
package cli
