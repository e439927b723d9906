// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory that integrate Viper,
// environment variables, and zap logging for the turtle CLI.
package utils
