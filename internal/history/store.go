// Package history keeps a local SQLite trail of operator actions: every
// simulation and mitigation triggered from the console, with its outcome.
// The live alert list itself is never persisted.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS action_log (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	action TEXT NOT NULL,
	target TEXT NOT NULL,
	incident_id TEXT,
	outcome TEXT NOT NULL,
	detail TEXT
);

CREATE INDEX IF NOT EXISTS idx_action_log_action ON action_log(action);
CREATE INDEX IF NOT EXISTS idx_action_log_timestamp ON action_log(timestamp);
`

// Actions and outcomes recorded in the trail.
const (
	ActionSimulate = "simulate"
	ActionMitigate = "mitigate"

	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Entry is one recorded operator action.
type Entry struct {
	ID         string
	Timestamp  string
	Action     string
	Target     string // simulation kind or mitigated IP
	IncidentID string
	Outcome    string
	Detail     string
}

// QueryOpts holds filters for action log queries.
type QueryOpts struct {
	Action string
	Since  string
	Limit  int
}

// Store manages the SQLite action log.
type Store struct {
	db     *sql.DB
	writes chan Entry
	done   chan struct{}
	logger *slog.Logger
}

// NewStore opens (or creates) the SQLite action database.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("setting WAL mode: %w (also: close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("creating schema: %w (also: close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{
		db:     db,
		writes: make(chan Entry, 64),
		done:   make(chan struct{}),
		logger: logger,
	}

	go s.writeLoop()
	return s, nil
}

// Record enqueues an action for async writing. Missing id and timestamp
// are filled in.
func (s *Store) Record(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	select {
	case s.writes <- entry:
	default:
		s.logger.Warn("history write buffer full, dropping entry", "id", entry.ID)
	}
}

// Query returns action entries matching the given filters, newest first.
func (s *Store) Query(opts QueryOpts) ([]Entry, error) {
	query := "SELECT id, timestamp, action, target, incident_id, outcome, detail FROM action_log WHERE 1=1"
	var args []any

	if opts.Action != "" {
		query += " AND action = ?"
		args = append(args, opts.Action)
	}
	if opts.Since != "" {
		query += " AND timestamp >= ?"
		args = append(args, opts.Since)
	}

	query += " ORDER BY timestamp DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	} else {
		query += " LIMIT 50"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying action log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var incidentID, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Target, &incidentID, &e.Outcome, &detail); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.IncidentID = incidentID.String
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DB exposes the underlying database for bulk operations (benchmarks,
// migrations). Normal writes go through Record.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close flushes pending writes and closes the database.
func (s *Store) Close() error {
	close(s.writes)
	<-s.done
	return s.db.Close()
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for entry := range s.writes {
		_, err := s.db.Exec(
			`INSERT INTO action_log (id, timestamp, action, target, incident_id, outcome, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.Timestamp, entry.Action, entry.Target, entry.IncidentID, entry.Outcome, entry.Detail,
		)
		if err != nil {
			s.logger.Error("history write failed", "id", entry.ID, "error", err)
		}
	}
}
