package programs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	programsCommandUseConstant        = "programs"
	programsCommandShortConstant      = "Manage the program library"
	programsCommandLongConstant       = "programs saves, lists, shows and deletes named Logo programs stored in the SQLite program library."
	saveCommandUseConstant            = "save <name> <file|->"
	saveCommandShortConstant          = "Store a program under a name"
	listCommandUseConstant            = "list"
	listCommandShortConstant          = "List stored programs"
	showCommandUseConstant            = "show <name>"
	showCommandShortConstant          = "Print the source of a stored program"
	deleteCommandUseConstant          = "delete <name>"
	deleteCommandShortConstant        = "Delete a stored program"
	standardInputPathConstant         = "-"
	readSourceErrorTemplateConstant   = "read %s: %w"
	savedMessageTemplateConstant      = "saved %s\n"
	deletedMessageTemplateConstant    = "deleted %s\n"
	listRowTemplateConstant           = "%s\t%s\n"
	listTimestampLayoutConstant       = "2006-01-02 15:04:05"
	tabwriterMinimumWidthConstant     = 0
	tabwriterTabWidthConstant         = 4
	tabwriterPaddingConstant          = 2
	tabwriterPaddingCharacterConstant = ' '
	closeStoreFailedMessageConstant   = "unable to close program store"
	programSavedMessageConstant       = "program saved"
	programDeletedMessageConstant     = "program deleted"
	logFieldProgramNameConstant       = "program_name"
	logFieldDatabasePathConstant      = "database_path"
	storeOpenedMessageConstant        = "program store opened"
	storeOpenFailedTemplateConstant   = "open program library %s: %w"
	newlineConstant                   = "\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the program library configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the programs cobra command group.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the programs command and its subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	groupCommand := &cobra.Command{
		Use:   programsCommandUseConstant,
		Short: programsCommandShortConstant,
		Long:  programsCommandLongConstant,
	}

	saveCommand := &cobra.Command{
		Use:   saveCommandUseConstant,
		Short: saveCommandShortConstant,
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, arguments []string) error {
			source, readError := readSource(arguments[1], command.InOrStdin())
			if readError != nil {
				return readError
			}
			return builder.withStore(func(store *Store, logger *zap.Logger) error {
				program, saveError := store.Save(command.Context(), arguments[0], source)
				if saveError != nil {
					return saveError
				}
				logger.Info(programSavedMessageConstant, zap.String(logFieldProgramNameConstant, program.Name))
				_, writeError := fmt.Fprintf(command.OutOrStdout(), savedMessageTemplateConstant, program.Name)
				return writeError
			})
		},
	}

	listCommand := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.withStore(func(store *Store, logger *zap.Logger) error {
				storedPrograms, listError := store.List(command.Context())
				if listError != nil {
					return listError
				}
				return writeProgramTable(command.OutOrStdout(), storedPrograms)
			})
		},
	}

	showCommand := &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.withStore(func(store *Store, logger *zap.Logger) error {
				program, getError := store.Get(command.Context(), arguments[0])
				if getError != nil {
					return getError
				}
				output := program.Source
				if !strings.HasSuffix(output, newlineConstant) {
					output += newlineConstant
				}
				_, writeError := io.WriteString(command.OutOrStdout(), output)
				return writeError
			})
		},
	}

	deleteCommand := &cobra.Command{
		Use:   deleteCommandUseConstant,
		Short: deleteCommandShortConstant,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.withStore(func(store *Store, logger *zap.Logger) error {
				if deleteError := store.Delete(command.Context(), arguments[0]); deleteError != nil {
					return deleteError
				}
				logger.Info(programDeletedMessageConstant, zap.String(logFieldProgramNameConstant, arguments[0]))
				_, writeError := fmt.Fprintf(command.OutOrStdout(), deletedMessageTemplateConstant, arguments[0])
				return writeError
			})
		},
	}

	groupCommand.AddCommand(saveCommand, listCommand, showCommand, deleteCommand)
	return groupCommand, nil
}

func (builder *CommandBuilder) withStore(operation func(store *Store, logger *zap.Logger) error) error {
	logger := builder.resolveLogger()
	databasePath := builder.resolveConfiguration().DatabasePath

	store, openError := Open(databasePath)
	if openError != nil {
		return fmt.Errorf(storeOpenFailedTemplateConstant, databasePath, openError)
	}
	logger.Debug(storeOpenedMessageConstant, zap.String(logFieldDatabasePathConstant, databasePath))
	defer func() {
		if closeError := store.Close(); closeError != nil {
			logger.Warn(closeStoreFailedMessageConstant, zap.Error(closeError))
		}
	}()
	return operation(store, logger)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func readSource(path string, standardInput io.Reader) (string, error) {
	if path == standardInputPathConstant {
		content, readError := io.ReadAll(standardInput)
		if readError != nil {
			return "", fmt.Errorf(readSourceErrorTemplateConstant, path, readError)
		}
		return string(content), nil
	}
	content, readError := os.ReadFile(path)
	if readError != nil {
		return "", fmt.Errorf(readSourceErrorTemplateConstant, path, readError)
	}
	return string(content), nil
}

func writeProgramTable(writer io.Writer, storedPrograms []Program) error {
	tableWriter := tabwriter.NewWriter(writer, tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingCharacterConstant, 0)
	for _, program := range storedPrograms {
		if _, writeError := fmt.Fprintf(tableWriter, listRowTemplateConstant, program.Name, program.UpdatedAt.Local().Format(listTimestampLayoutConstant)); writeError != nil {
			return writeError
		}
	}
	return tableWriter.Flush()
}
