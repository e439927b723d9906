package programs

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"

	"github.com/temirov/turtle/internal/logo"
)

const (
	sqliteDriverNameConstant         = "sqlite"
	databaseDirectoryPermissions     = 0o755
	timestampLayoutConstant          = time.RFC3339Nano
	maximumNameLengthConstant        = 64
	createDirectoryErrorTemplate     = "create database directory: %w"
	openDatabaseErrorTemplate        = "open program database: %w"
	applySchemaErrorTemplate         = "apply program schema: %w"
	saveProgramErrorTemplate         = "save program %q: %w"
	loadProgramErrorTemplate         = "load program %q: %w"
	listProgramsErrorTemplate        = "list programs: %w"
	deleteProgramErrorTemplate       = "delete program %q: %w"
	invalidNameDetailTemplate        = "%w: %q"
	invalidSourceDetailTemplate      = "%w: %w"
	parseTimestampErrorTemplate      = "parse timestamp %q: %w"
	emptyDatabasePathMessageConstant = "database path is empty"
	upsertProgramStatementConstant   = "INSERT INTO programs (name, source, created_at, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(name) DO UPDATE SET source = excluded.source, updated_at = excluded.updated_at"
	selectProgramStatementConstant   = "SELECT name, source, created_at, updated_at FROM programs WHERE name = ?"
	selectProgramsStatementConstant  = "SELECT name, source, created_at, updated_at FROM programs ORDER BY name"
	deleteProgramStatementConstant   = "DELETE FROM programs WHERE name = ?"
)

//go:embed schema.sql
var schemaStatements string

var programNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

var (
	// ErrProgramNotFound indicates that no program is stored under the name.
	ErrProgramNotFound = errors.New("program not found")
	// ErrInvalidName indicates a program name that cannot be stored.
	ErrInvalidName = errors.New("invalid program name")
	// ErrInvalidSource indicates source that does not parse.
	ErrInvalidSource = errors.New("invalid program source")
)

// Configuration locates the program database.
type Configuration struct {
	DatabasePath string `mapstructure:"database_path"`
}

// Program is a stored Logo program.
type Program struct {
	Name      string    `json:"name" yaml:"name"`
	Source    string    `json:"source" yaml:"source"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store is a program library backed by SQLite.
type Store struct {
	database *sql.DB
	clock    func() time.Time
}

// Open opens or creates the database at databasePath and applies the schema.
func Open(databasePath string) (*Store, error) {
	trimmedPath := strings.TrimSpace(databasePath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(emptyDatabasePathMessageConstant)
	}
	if directoryError := os.MkdirAll(filepath.Dir(trimmedPath), databaseDirectoryPermissions); directoryError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplate, directoryError)
	}

	database, openError := sql.Open(sqliteDriverNameConstant, trimmedPath)
	if openError != nil {
		return nil, fmt.Errorf(openDatabaseErrorTemplate, openError)
	}
	database.SetMaxOpenConns(1)

	if _, schemaError := database.Exec(schemaStatements); schemaError != nil {
		_ = database.Close()
		return nil, fmt.Errorf(applySchemaErrorTemplate, schemaError)
	}

	return &Store{database: database, clock: time.Now}, nil
}

// Close releases the database.
func (store *Store) Close() error {
	return store.database.Close()
}

// ValidateName reports whether name can be used to store a program.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > maximumNameLengthConstant || !programNamePattern.MatchString(name) {
		return fmt.Errorf(invalidNameDetailTemplate, ErrInvalidName, name)
	}
	return nil
}

// Save stores source under name, replacing any earlier version. The source
// must parse. The creation time of an existing program is kept.
func (store *Store) Save(executionContext context.Context, name string, source string) (Program, error) {
	if nameError := ValidateName(name); nameError != nil {
		return Program{}, nameError
	}
	if _, parseError := logo.Parse(source); parseError != nil {
		return Program{}, fmt.Errorf(invalidSourceDetailTemplate, ErrInvalidSource, parseError)
	}

	timestamp := store.clock().UTC().Format(timestampLayoutConstant)
	if _, execError := store.database.ExecContext(executionContext, upsertProgramStatementConstant, name, source, timestamp, timestamp); execError != nil {
		return Program{}, fmt.Errorf(saveProgramErrorTemplate, name, execError)
	}
	return store.Get(executionContext, name)
}

// Get loads the program stored under name.
func (store *Store) Get(executionContext context.Context, name string) (Program, error) {
	row := store.database.QueryRowContext(executionContext, selectProgramStatementConstant, name)
	program, scanError := scanProgram(row)
	if errors.Is(scanError, sql.ErrNoRows) {
		return Program{}, fmt.Errorf(loadProgramErrorTemplate, name, ErrProgramNotFound)
	}
	if scanError != nil {
		return Program{}, fmt.Errorf(loadProgramErrorTemplate, name, scanError)
	}
	return program, nil
}

// List returns every stored program ordered by name.
func (store *Store) List(executionContext context.Context) ([]Program, error) {
	rows, queryError := store.database.QueryContext(executionContext, selectProgramsStatementConstant)
	if queryError != nil {
		return nil, fmt.Errorf(listProgramsErrorTemplate, queryError)
	}
	defer func() { _ = rows.Close() }()

	storedPrograms := []Program{}
	for rows.Next() {
		program, scanError := scanProgram(rows)
		if scanError != nil {
			return nil, fmt.Errorf(listProgramsErrorTemplate, scanError)
		}
		storedPrograms = append(storedPrograms, program)
	}
	if rowsError := rows.Err(); rowsError != nil {
		return nil, fmt.Errorf(listProgramsErrorTemplate, rowsError)
	}
	return storedPrograms, nil
}

// Delete removes the program stored under name.
func (store *Store) Delete(executionContext context.Context, name string) error {
	result, execError := store.database.ExecContext(executionContext, deleteProgramStatementConstant, name)
	if execError != nil {
		return fmt.Errorf(deleteProgramErrorTemplate, name, execError)
	}
	affectedRows, affectedError := result.RowsAffected()
	if affectedError != nil {
		return fmt.Errorf(deleteProgramErrorTemplate, name, affectedError)
	}
	if affectedRows == 0 {
		return fmt.Errorf(deleteProgramErrorTemplate, name, ErrProgramNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(destinations ...any) error
}

func scanProgram(row rowScanner) (Program, error) {
	var program Program
	var createdAt, updatedAt string
	if scanError := row.Scan(&program.Name, &program.Source, &createdAt, &updatedAt); scanError != nil {
		return Program{}, scanError
	}

	var parseError error
	if program.CreatedAt, parseError = parseTimestamp(createdAt); parseError != nil {
		return Program{}, parseError
	}
	if program.UpdatedAt, parseError = parseTimestamp(updatedAt); parseError != nil {
		return Program{}, parseError
	}
	return program, nil
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, parseError := time.Parse(timestampLayoutConstant, value)
	if parseError != nil {
		return time.Time{}, fmt.Errorf(parseTimestampErrorTemplate, value, parseError)
	}
	return parsed, nil
}
