package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

// CachedFile is the per-file payload stored by the incremental index cache:
// the raw (pre-classification) findings plus the inline suppressions found in
// the file. Both are needed to replay classification without re-reading the
// file.
type CachedFile struct {
	Findings     []ir.Finding          `json:"findings"`
	Suppressions []indexer.Suppression `json:"suppressions,omitempty"`
}

// LookupFileCache returns the cached payload for (path, sha256, corpus
// version), if present.
func (db *DB) LookupFileCache(path, sha, corpusVersion string) (CachedFile, bool, error) {
	var payload string
	row := db.conn.QueryRow(
		`SELECT payload_json FROM file_cache WHERE path=? AND sha256=? AND corpus_version=?`,
		path, sha, corpusVersion)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CachedFile{}, false, nil
		}
		return CachedFile{}, false, err
	}
	var cf CachedFile
	if err := json.Unmarshal([]byte(payload), &cf); err != nil {
		return CachedFile{}, false, err
	}
	return cf, true, nil
}

// SaveFileCache upserts a per-file payload and clears stale entries for the
// same path so the cache does not grow with every edit.
func (db *DB) SaveFileCache(path, sha, corpusVersion string, cf CachedFile) error {
	b, err := json.Marshal(cf)
	if err != nil {
		return err
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM file_cache WHERE path=? AND (sha256<>? OR corpus_version<>?)`,
		path, sha, corpusVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`
INSERT INTO file_cache(path, sha256, corpus_version, payload_json, created_at)
VALUES(?,?,?,?,?)
ON CONFLICT(path, sha256, corpus_version) DO UPDATE SET payload_json=excluded.payload_json, created_at=excluded.created_at`,
		path, sha, corpusVersion, string(b), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}
