package programs

import (
	"os"
	"path/filepath"
)

const (
	databasePathConfigurationKeyConstant = "database_path"
	configurationKeySeparatorConstant    = "."
	applicationDataDirectoryConstant     = "turtle"
	databaseFileNameConstant             = "programs.db"
)

// DefaultConfiguration places the database in the user's configuration
// directory, falling back to the working directory.
func DefaultConfiguration() Configuration {
	return Configuration{DatabasePath: DefaultDatabasePath()}
}

// DefaultDatabasePath returns the default location of the program database.
func DefaultDatabasePath() string {
	configurationDirectory, directoryError := os.UserConfigDir()
	if directoryError != nil || len(configurationDirectory) == 0 {
		return databaseFileNameConstant
	}
	return filepath.Join(configurationDirectory, applicationDataDirectoryConstant, databaseFileNameConstant)
}

// DefaultConfigurationValues exposes the defaults as configuration keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	return map[string]any{
		prefix + configurationKeySeparatorConstant + databasePathConfigurationKeyConstant: DefaultDatabasePath(),
	}
}
