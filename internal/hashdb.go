package internal

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// HashRecord is one row of the persistent hash index: a placed file's
// absolute destination path and its content hash.
type HashRecord struct {
	Path string
	Hash string
}

// HashStore is the durable path->hash index used for duplicate
// short-circuiting across runs. It is not a source of truth for file
// existence; see Reconcile.
type HashStore struct {
	db *sql.DB
}

func OpenHashStore(path string) (*HashStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hash db %s: %w", path, err)
	}
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS media_hashes (path TEXT NOT NULL, hash TEXT NOT NULL, UNIQUE(path) ON CONFLICT IGNORE)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create hash table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS media_hashes_hash ON media_hashes (hash)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create hash index: %w", err)
	}
	return &HashStore{db: db}, nil
}

func (s *HashStore) Insert(path, hash string) error {
	_, err := s.db.Exec(`INSERT INTO media_hashes (path, hash) VALUES (?, ?)`, path, hash)
	return err
}

// FindByHash returns every recorded destination path holding the given
// content hash.
func (s *HashStore) FindByHash(hash string) ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM media_hashes WHERE hash = ?`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *HashStore) FindByPath(path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM media_hashes WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

func (s *HashStore) All() ([]HashRecord, error) {
	rows, err := s.db.Query(`SELECT path, hash FROM media_hashes ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []HashRecord
	for rows.Next() {
		var r HashRecord
		if err := rows.Scan(&r.Path, &r.Hash); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Reconcile drops rows whose destination file no longer exists and returns
// how many were removed.
func (s *HashStore) Reconcile() (int, error) {
	recs, err := s.All()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, r := range recs {
		if _, err := os.Stat(r.Path); os.IsNotExist(err) {
			if _, err := s.db.Exec(`DELETE FROM media_hashes WHERE path = ?`, r.Path); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func (s *HashStore) Close() error {
	return s.db.Close()
}
