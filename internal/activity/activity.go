// Package activity keeps an audit log of tool calls in a local SQLite
// database, so recent assistant actions can be inspected and replayed into
// context.
package activity

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Timestamps are stored in UTC with a fixed-width fractional second so the
// TEXT column compares chronologically under SQLite's byte-wise ordering.
const tsFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one logged tool call.
type Record struct {
	ID         int64     `json:"id"`
	Time       time.Time `json:"time"`
	Tool       string    `json:"tool"`
	Service    string    `json:"service"` // anki, todoist, vault, calendar, system
	DurationMS int64     `json:"duration_ms"`
	OK         bool      `json:"ok"`
	Error      string    `json:"error,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// Log wraps the SQLite-backed activity store.
type Log struct {
	db *sql.DB
}

// Open opens or creates the activity database under statePath.
func Open(statePath string) (*Log, error) {
	dbPath := filepath.Join(statePath, "system", "activity.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open activity database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping activity database: %w", err)
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate activity database: %w", err)
	}
	return l, nil
}

func (l *Log) migrate() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS tool_calls (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ts          TEXT NOT NULL,
			tool        TEXT NOT NULL,
			service     TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			ok          INTEGER NOT NULL,
			error       TEXT NOT NULL DEFAULT '',
			detail      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_tool_calls_ts ON tool_calls(ts);
		CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool);
	`)
	return err
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Record appends one tool call to the log.
func (l *Log) Record(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	_, err := l.db.Exec(
		`INSERT INTO tool_calls (ts, tool, service, duration_ms, ok, error, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Time.UTC().Format(tsFormat),
		rec.Tool, rec.Service, rec.DurationMS, boolToInt(rec.OK), rec.Error, rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("record tool call: %w", err)
	}
	return nil
}

// Recent returns the most recent tool calls, newest first.
func (l *Log) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(
		`SELECT id, ts, tool, service, duration_ms, ok, error, detail
		 FROM tool_calls ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Today returns all tool calls since local midnight, oldest first.
func (l *Log) Today() ([]Record, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	rows, err := l.db.Query(
		`SELECT id, ts, tool, service, duration_ms, ok, error, detail
		 FROM tool_calls WHERE ts >= ? ORDER BY id ASC`,
		midnight.UTC().Format(tsFormat))
	if err != nil {
		return nil, fmt.Errorf("query today: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ToolCount aggregates calls and failures for one tool.
type ToolCount struct {
	Calls  int `json:"calls"`
	Failed int `json:"failed"`
}

// CountsByTool returns call and failure counts per tool name since the
// given time.
func (l *Log) CountsByTool(since time.Time) (map[string]ToolCount, error) {
	rows, err := l.db.Query(
		`SELECT tool, COUNT(*), COUNT(*) - SUM(ok)
		 FROM tool_calls WHERE ts >= ? GROUP BY tool`,
		since.UTC().Format(tsFormat))
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]ToolCount{}
	for rows.Next() {
		var tool string
		var c ToolCount
		if err := rows.Scan(&tool, &c.Calls, &c.Failed); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[tool] = c
	}
	return counts, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		var ok int
		if err := rows.Scan(&rec.ID, &ts, &rec.Tool, &rec.Service, &rec.DurationMS, &ok, &rec.Error, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		rec.Time = t
		rec.OK = ok != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
