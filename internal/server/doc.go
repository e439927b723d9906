// Package server exposes the Logo interpreter over HTTP and websockets.
//
// The index page hosts a canvas client. Programs are parsed with POST /,
// rendered to SVG with POST /render, and streamed command by command over
// the /ws websocket. When a program store is configured, /programs manages
// saved programs.
package server
