// Package session runs Logo programs on behalf of connected clients and
// streams the resulting turtle commands back as events.
//
// Each client has at most one running program. Starting a new program stops
// the previous one first, so events of two runs never interleave.
package session
