package storage

import (
	"database/sql"
	"time"

	"github.com/jacoblewisau/higlint/internal/ir"
)

// RunRow is a lightweight listing row for /runs.
type RunRow struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	Root          string    `json:"root,omitempty"`
	CorpusVersion string    `json:"corpus_version,omitempty"`
	Category      string    `json:"category,omitempty"`
	Findings      int       `json:"findings"`
}

// ListRuns returns a lightweight list of runs with counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.root, r.corpus_version, r.category,
		       (SELECT COUNT(1) FROM findings f WHERE f.run_id = r.id AND f.suppressed = 0) AS findings
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Root, &rr.CorpusVersion, &rr.Category, &rr.Findings); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListFindings returns a run's rendered findings at or above a minimum
// severity, suppressed excluded.
func (db *DB) ListFindings(runID string, minSeverity ir.Severity) ([]ir.Finding, error) {
	const q = `
		SELECT id, rule_id, file, line_start, line_end, severity, message, score
		  FROM findings
		 WHERE run_id = ? AND suppressed = 0
		   AND (CASE severity WHEN 'critical' THEN 4 WHEN 'important' THEN 3 WHEN 'context_dependent' THEN 2 ELSE 1 END)
		       >= (CASE ? WHEN 'critical' THEN 4 WHEN 'important' THEN 3 WHEN 'context_dependent' THEN 2 ELSE 1 END)
		 ORDER BY score DESC, file, line_start, rule_id, id`
	rows, err := db.conn.Query(q, runID, string(minSeverity))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ir.Finding
	for rows.Next() {
		var f ir.Finding
		var sev string
		if err := rows.Scan(&f.ID, &f.RuleID, &f.File, &f.LineStart, &f.LineEnd, &sev, &f.Message, &f.Score); err != nil {
			return nil, err
		}
		f.Severity = ir.Severity(sev)
		out = append(out, f)
	}
	return out, rows.Err()
}

// HasRun reports whether a run id exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
