package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentLookup resolves an environment variable.
type EnvironmentLookup func(string) string

// Expander turns configured file locations into usable paths. It resolves a
// leading tilde to the home directory and substitutes $VAR references.
type Expander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentLookup     EnvironmentLookup
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewExpander constructs an Expander backed by the operating system.
func NewExpander() *Expander {
	return NewExpanderWithProviders(os.UserHomeDir, os.Getenv)
}

// NewExpanderWithProviders constructs an Expander with custom lookups. Nil
// arguments fall back to the operating system.
func NewExpanderWithProviders(homeProvider HomeDirectoryProvider, environmentLookup EnvironmentLookup) *Expander {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if environmentLookup == nil {
		environmentLookup = os.Getenv
	}
	return &Expander{homeDirectoryProvider: homeProvider, environmentLookup: environmentLookup}
}

// Expand resolves candidatePath. Blank input stays blank; anything else is
// trimmed, expanded and cleaned.
func (expander *Expander) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || len(trimmedPath) == 0 {
		return trimmedPath
	}

	expandedPath := os.Expand(trimmedPath, expander.environmentLookup)
	expandedPath = expander.expandHome(expandedPath)
	if len(expandedPath) == 0 {
		return expandedPath
	}
	return filepath.Clean(expandedPath)
}

func (expander *Expander) expandHome(candidatePath string) string {
	if !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	default:
		return candidatePath
	}
}

func (expander *Expander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
