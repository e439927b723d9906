// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate turtle commands and program run events into concise
// messages for CLI users while detailed telemetry continues to flow through
// structured loggers.
package ui
