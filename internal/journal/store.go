package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"tutorsync/internal/config"
)

// ErrLocked indicates another process holds the journal lock.
var ErrLocked = errors.New("journal is locked by another process")

// Store is the append-only session journal backed by SQLite. It records
// session lifecycle, executed commands, and published transitions so past
// runs can be inspected from the CLI. It never feeds state back into the
// orchestrator.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the journal database and acquires the
// cross-process lock guarding it.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.JournalDir, "journal.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire journal lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.JournalDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection and the journal lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && dbErr == nil {
			dbErr = unlockErr
		}
	}
	return dbErr
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.path
}

// StartSession records a new session and returns its identifier.
func (s *Store) StartSession(ctx context.Context, courseTitle, lectureTitle string) (*Session, error) {
	session := &Session{
		ID:           newSessionID(),
		CourseTitle:  courseTitle,
		LectureTitle: lectureTitle,
		StartedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (id, course_title, lecture_title, started_at) VALUES (?, ?, ?, ?)`,
		session.ID,
		session.CourseTitle,
		session.LectureTitle,
		session.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

// EndSession stamps the session's end time.
func (s *Store) EndSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// RecordCommand appends one executed command.
func (s *Store) RecordCommand(ctx context.Context, rec CommandRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO commands (session_id, command_id, kind, attempts, status, error, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.CommandID,
		rec.Kind,
		rec.Attempts,
		rec.Status,
		nullableString(rec.Error),
		rec.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert command record: %w", err)
	}
	return nil
}

// RecordTransition appends one published context snapshot.
func (s *Store) RecordTransition(ctx context.Context, rec TransitionRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transitions (session_id, playback_state, message_count, unactivated_id, last_error, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.PlaybackState,
		rec.MessageCount,
		nullableString(rec.UnactivatedID),
		nullableString(rec.LastError),
		rec.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition record: %w", err)
	}
	return nil
}

// Sessions lists recorded sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, course_title, lecture_title, started_at, ended_at FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&session.ID, &session.CourseTitle, &session.LectureTitle, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt, err = parseTimestamp(startedAt)
		if err != nil {
			return nil, err
		}
		if endedAt.Valid {
			session.EndedAt, err = parseTimestamp(endedAt.String)
			if err != nil {
				return nil, err
			}
			session.Ended = true
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Commands lists the command records of one session in execution order.
func (s *Store) Commands(ctx context.Context, sessionID string) ([]CommandRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_id, command_id, kind, attempts, status, error, recorded_at
         FROM commands WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var errText sql.NullString
		var recordedAt string
		if err := rows.Scan(&rec.SessionID, &rec.CommandID, &rec.Kind, &rec.Attempts, &rec.Status, &errText, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan command record: %w", err)
		}
		rec.Error = errText.String
		rec.RecordedAt, err = parseTimestamp(recordedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Transitions lists the published snapshots of one session in publish order.
func (s *Store) Transitions(ctx context.Context, sessionID string) ([]TransitionRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT session_id, playback_state, message_count, unactivated_id, last_error, recorded_at
         FROM transitions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var records []TransitionRecord
	for rows.Next() {
		var rec TransitionRecord
		var unactivated sql.NullString
		var lastErr sql.NullString
		var recordedAt string
		if err := rows.Scan(&rec.SessionID, &rec.PlaybackState, &rec.MessageCount, &unactivated, &lastErr, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan transition record: %w", err)
		}
		rec.UnactivatedID = unactivated.String
		rec.LastError = lastErr.String
		rec.RecordedAt, err = parseTimestamp(recordedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HealthSummary reports row counts for diagnostics.
func (s *Store) HealthSummary(ctx context.Context) (Health, error) {
	health := Health{Path: s.path}
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM sessions`, &health.Sessions},
		{`SELECT COUNT(1) FROM commands`, &health.Commands},
		{`SELECT COUNT(1) FROM transitions`, &health.Transitions},
		{`SELECT COUNT(1) FROM commands WHERE status = 'failed'`, &health.DeadLettered},
	}
	for _, count := range counts {
		if err := s.db.QueryRowContext(ctx, count.query).Scan(count.dest); err != nil {
			return Health{}, fmt.Errorf("journal health: %w", err)
		}
	}
	return health, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse journal timestamp %q: %w", value, err)
	}
	return ts, nil
}
