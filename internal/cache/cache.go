// internal/cache/cache.go
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/resolve"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a resolve.Resolver that memoizes successful scaffold → assembly
// lookups in a local sqlite database. NCBI resolution dominates the run
// time, so repeated runs over overlapping hit tables skip the network
// entirely for known scaffolds. Failures are not cached.
type Store struct {
	db   *sql.DB
	next resolve.Resolver
}

// Open creates or opens the cache at path, delegating misses to next.
func Open(path string, next resolve.Resolver) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	s := &Store{db: db, next: next}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accessions (
		scaffold    TEXT PRIMARY KEY,
		assembly    TEXT NOT NULL,
		resolved_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// ResolveScaffold implements resolve.Resolver.
func (s *Store) ResolveScaffold(ctx context.Context, scaffold hits.ScaffoldID) (resolve.AssemblyID, error) {
	var assembly string
	err := s.db.QueryRowContext(ctx,
		`SELECT assembly FROM accessions WHERE scaffold = ?`, string(scaffold),
	).Scan(&assembly)
	switch {
	case err == nil:
		return resolve.AssemblyID(assembly), nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("cache lookup for %s: %w", scaffold, err)
	}

	a, err := s.next.ResolveScaffold(ctx, scaffold)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO accessions (scaffold, assembly, resolved_at) VALUES (?, ?, ?)`,
		string(scaffold), string(a), time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("cache store for %s: %w", scaffold, err)
	}
	return a, nil
}
