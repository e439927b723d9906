package ui

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/temirov/turtle/internal/interpreter"
)

const (
	runStartedMessageTemplateConstant   = "Running %s"
	runCompletedMessageTemplateConstant = "Completed %s (%d commands)"
	runFailedMessageTemplateConstant    = "%s failed: %s"
	commandWithValueTemplateConstant    = "%s %s"
	commandWithPositionTemplateConstant = "%s %s %s"
	unknownFailureMessageConstant       = "unknown error"
	numberFormatConstant                = 'f'
	numberPrecisionConstant             = -1
	numberBitSizeConstant               = 64
)

// CommandEventFormatter builds human-readable messages for turtle commands and
// program run lifecycle events.
type CommandEventFormatter struct{}

// FormatCommand renders command the way it would be written in Logo, for
// example "forward 10" or "setpos 3 -4".
func (formatter CommandEventFormatter) FormatCommand(command interpreter.Command) string {
	name := string(command.Name)
	switch {
	case command.X != nil && command.Y != nil:
		return fmt.Sprintf(commandWithPositionTemplateConstant, name, formatter.formatNumber(*command.X), formatter.formatNumber(*command.Y))
	case command.Value != nil:
		return fmt.Sprintf(commandWithValueTemplateConstant, name, formatter.formatNumber(*command.Value))
	case len(command.Color) > 0:
		return fmt.Sprintf(commandWithValueTemplateConstant, name, command.Color)
	case command.Text != nil:
		return fmt.Sprintf(commandWithValueTemplateConstant, name, *command.Text)
	default:
		return name
	}
}

// BuildStartedMessage formats the message describing a program about to run.
func (formatter CommandEventFormatter) BuildStartedMessage(programLabel string) string {
	return fmt.Sprintf(runStartedMessageTemplateConstant, programLabel)
}

// BuildCompletedMessage formats the message describing a finished program.
func (formatter CommandEventFormatter) BuildCompletedMessage(programLabel string, emittedCommands int) string {
	return fmt.Sprintf(runCompletedMessageTemplateConstant, programLabel, emittedCommands)
}

// BuildFailureMessage formats the message describing a program that stopped with an error.
func (formatter CommandEventFormatter) BuildFailureMessage(programLabel string, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(runFailedMessageTemplateConstant, programLabel, failureMessage)
}

func (formatter CommandEventFormatter) formatNumber(value float64) string {
	return strconv.FormatFloat(value, numberFormatConstant, numberPrecisionConstant, numberBitSizeConstant)
}

// ConsoleRunEventLogger renders program run events using a zap logger configured for human-readable output.
type ConsoleRunEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleRunEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleRunEventLogger(logger *zap.Logger) *ConsoleRunEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleRunEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// RunStarted logs the start of a program run.
func (eventLogger *ConsoleRunEventLogger) RunStarted(programLabel string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(programLabel))
}

// RunCompleted logs a program that ran to completion.
func (eventLogger *ConsoleRunEventLogger) RunCompleted(programLabel string, emittedCommands int) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildCompletedMessage(programLabel, emittedCommands))
}

// RunFailed logs a program that stopped with an error.
func (eventLogger *ConsoleRunEventLogger) RunFailed(programLabel string, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildFailureMessage(programLabel, failure))
}
