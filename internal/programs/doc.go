// Package programs persists named Logo programs in a SQLite database so they
// can be listed, shown, run and rendered later.
package programs
