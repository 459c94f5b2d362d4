package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RequirementStore = (*Store)(nil)

// DefaultFileName is the database file created in the data directory.
const DefaultFileName = "requirements.db"

// Store is a SQLite-backed requirement store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the SQLite database at path.
// If path is empty, defaults to ~/.reqsift/data/requirements.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".reqsift", "data", DefaultFileName)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Store saves a run as a new row.
func (s *Store) Store(ctx context.Context, run *domain.ExtractionRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	requirementsJSON, err := json.Marshal(run.Requirements)
	if err != nil {
		return fmt.Errorf("%w: marshalling requirements: %v", domain.ErrValidation, err)
	}
	tables := run.Tables
	if tables == nil {
		tables = []domain.FileTable{}
	}
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("%w: marshalling tables: %v", domain.ErrValidation, err)
	}

	now := time.Now().UTC()
	createdAt := run.CreatedAt.UTC()
	if run.CreatedAt.IsZero() {
		createdAt = now
	}
	updatedAt := run.UpdatedAt.UTC()
	if run.UpdatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extraction_runs (id, project_id, user_id, requirements, tables, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProjectID, run.UserID, string(requirementsJSON), string(tablesJSON), createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("%w: saving run: %v", domain.ErrPersistence, err)
	}
	return nil
}

// FetchPrevious returns the requirements of the project's most recent run.
func (s *Store) FetchPrevious(ctx context.Context, projectID string) ([]domain.Requirement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT requirements FROM extraction_runs
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, projectID)

	var requirementsJSON string
	if err := row.Scan(&requirementsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning run: %v", domain.ErrPersistence, err)
	}

	var requirements []domain.Requirement
	if err := json.Unmarshal([]byte(requirementsJSON), &requirements); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling requirements: %v", domain.ErrPersistence, err)
	}
	return requirements, nil
}

// List returns every run for a project, newest first.
func (s *Store) List(ctx context.Context, projectID string) ([]domain.ExtractionRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, user_id, requirements, tables, created_at, updated_at
		FROM extraction_runs
		WHERE project_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying runs: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	runs := []domain.ExtractionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating runs: %v", domain.ErrPersistence, err)
	}

	return runs, nil
}

// scanRun scans a run from *sql.Rows.
func scanRun(rows *sql.Rows) (*domain.ExtractionRun, error) {
	var run domain.ExtractionRun
	var requirementsJSON, tablesJSON string
	var createdAt, updatedAt sql.NullTime
	if err := rows.Scan(&run.ID, &run.ProjectID, &run.UserID,
		&requirementsJSON, &tablesJSON, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: scanning run: %v", domain.ErrPersistence, err)
	}

	if err := json.Unmarshal([]byte(requirementsJSON), &run.Requirements); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling requirements: %v", domain.ErrPersistence, err)
	}
	if err := json.Unmarshal([]byte(tablesJSON), &run.Tables); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling tables: %v", domain.ErrPersistence, err)
	}
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		run.UpdatedAt = updatedAt.Time
	}

	return &run, nil
}
