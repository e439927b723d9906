// Package logo tokenizes and parses Logo turtle-graphics source into a
// Program tree that the interpreter executes.
//
// The tree mirrors the JSON documents exchanged with browser clients: each
// Statement is tagged by its name and each Expression by its kind, so
// programs can be decoded from JSON as well as parsed from source.
package logo
