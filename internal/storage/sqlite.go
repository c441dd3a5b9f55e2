package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/jacoblewisau/higlint/internal/ir"
)

// DB is the concrete storage backed by SQLite.
type DB struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{conn: c}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures tables exist.
func (db *DB) CreateSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id             TEXT PRIMARY KEY,
  started_at     TEXT,          -- RFC3339
  root           TEXT,
  engine_version TEXT,
  corpus_version TEXT,
  category       TEXT,
  run_json       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
  id           TEXT,
  run_id       TEXT NOT NULL,
  rule_id      TEXT,
  file         TEXT,
  line_start   INTEGER,
  line_end     INTEGER,
  severity     TEXT,
  perspectives TEXT,            -- comma-joined
  message      TEXT,
  suppressed   INTEGER NOT NULL DEFAULT 0,
  score        REAL,
  PRIMARY KEY (id, run_id),
  FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
CREATE INDEX IF NOT EXISTS idx_findings_rule ON findings(rule_id);

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT UNIQUE NOT NULL,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'viewer',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id INTEGER NOT NULL,
  expires_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS audit (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  username TEXT,
  action TEXT NOT NULL,
  resource TEXT,
  meta_json TEXT
);

CREATE TABLE IF NOT EXISTS waivers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule_id     TEXT NOT NULL,
  file        TEXT,              -- optional path substring; NULL = any
  pattern_sub TEXT,              -- optional substring to match message/snippet
  reason      TEXT NOT NULL,
  expires_at  TEXT NOT NULL,     -- RFC3339Nano
  created_by  TEXT NOT NULL,
  created_at  TEXT NOT NULL,
  revoked_at  TEXT               -- NULL = active
);

-- Incremental index cache: raw per-file match results keyed by content hash
-- and corpus version, so unchanged files skip tokenizing and matching.
CREATE TABLE IF NOT EXISTS file_cache (
  path           TEXT NOT NULL,
  sha256         TEXT NOT NULL,
  corpus_version TEXT NOT NULL,
  payload_json   TEXT NOT NULL,
  created_at     TEXT NOT NULL,
  PRIMARY KEY (path, sha256, corpus_version)
);
`)
	return err
}

// SaveRun upserts a run JSON and (re)writes its findings.
func (db *DB) SaveRun(run *ir.Run) error {
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ts := run.StartedAt.UTC().Format(time.RFC3339Nano)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, root, engine_version, corpus_version, category, run_json)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET started_at=excluded.started_at, root=excluded.root,
           engine_version=excluded.engine_version, corpus_version=excluded.corpus_version,
           category=excluded.category, run_json=excluded.run_json`,
		run.ID, ts, run.Root, run.EngineVersion, run.CorpusVersion, run.Profile.Category, string(b),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM findings WHERE run_id = ?`, run.ID); err != nil {
		return err
	}
	if len(run.Findings) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO findings
			(id, run_id, rule_id, file, line_start, line_end, severity, perspectives, message, suppressed, score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, f := range run.Findings {
			if _, err := stmt.Exec(
				f.ID, run.ID, f.RuleID, f.File, f.LineStart, f.LineEnd,
				string(f.EffectiveSeverity()), joinPerspectives(f.Perspectives),
				f.Message, boolInt(f.Suppressed), f.Score,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadRun returns the full run (from stored JSON).
func (db *DB) LoadRun(id string) (ir.Run, error) {
	var s string
	row := db.conn.QueryRow(`SELECT run_json FROM runs WHERE id = ?`, id)
	if err := row.Scan(&s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Run{}, err
		}
		return ir.Run{}, err
	}
	var run ir.Run
	if err := json.Unmarshal([]byte(s), &run); err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

// LoadLatestRun returns the most recently started run.
func (db *DB) LoadLatestRun() (ir.Run, error) {
	rows, err := db.ListRuns(1, 0)
	if err != nil {
		return ir.Run{}, err
	}
	if len(rows) == 0 {
		return ir.Run{}, sql.ErrNoRows
	}
	return db.LoadRun(rows[0].ID)
}

func joinPerspectives(ps []ir.Perspective) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
