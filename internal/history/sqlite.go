package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// defaultHistoryLimit caps a query that does not set its own limit.
const defaultHistoryLimit = 20

// Store is the SQLite-backed Sink.
type Store struct {
	conn *sql.DB
}

var _ Sink = (*Store)(nil)

// Open opens or creates the SQLite database at the given path. It creates
// the parent directory if it does not exist.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL for better concurrent read performance.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory database, useful for testing.
func OpenInMemory() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// migrate runs forward migrations to bring the schema up to date.
func (s *Store) migrate() error {
	if _, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := s.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

func (s *Store) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analysis_records (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at     TEXT NOT NULL,
			project        TEXT NOT NULL,
			health_score   INTEGER NOT NULL,
			issues_found   INTEGER NOT NULL,
			total_patterns INTEGER NOT NULL,
			detections     TEXT NOT NULL,
			session_id     TEXT NOT NULL,
			domain         TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_records_isolation
			ON analysis_records(session_id, domain, project)`,
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}
	return tx.Commit()
}

// Put appends one record. The request type guarantees the isolation
// identity is present.
func (s *Store) Put(ctx context.Context, req PutRequest) error {
	rec := req.record
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO analysis_records
		(created_at, project, health_score, issues_found, total_patterns, detections, session_id, domain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt.Format(time.RFC3339), rec.Project, rec.HealthScore,
		rec.IssuesFound, rec.TotalPatterns, rec.Detections,
		req.sessionID, req.domain,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis record: %w", err)
	}
	return nil
}

// History returns records for the query's project, newest first, scoped
// strictly to the query's session id and domain.
func (s *Store) History(ctx context.Context, q Query) ([]Record, error) {
	limit := q.limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, created_at, project, health_score, issues_found, total_patterns, detections, session_id, domain
		 FROM analysis_records
		 WHERE session_id = ? AND domain = ? AND project = ?
		 ORDER BY id DESC LIMIT ?`,
		q.sessionID, q.domain, q.project, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying analysis records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Project, &rec.HealthScore,
			&rec.IssuesFound, &rec.TotalPatterns, &rec.Detections,
			&rec.SessionID, &rec.DomainTag); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
