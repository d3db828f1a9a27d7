package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/msgboard/internal/core"
)

const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		date     TEXT NOT NULL,
		username TEXT,
		message  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_messages_date ON messages(date);
`

// SQLiteStore keeps records in a local SQLite file. It is a drop-in for
// MongoDB when running without one.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup opens the database and runs setup instead of the default schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// InsertRecord stores one record. Field values that are not strings are
// stored as their JSON text; nil is stored as NULL.
func (s *SQLiteStore) InsertRecord(ctx context.Context, rec core.Record) error {
	username, err := columnValue(rec.Username)
	if err != nil {
		return fmt.Errorf("encode username: %w", err)
	}
	message, err := columnValue(rec.Message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	query := `INSERT INTO messages (date, username, message) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, rec.Date, username, message); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListRecords returns up to limit records, newest first. A non-positive limit returns all.
func (s *SQLiteStore) ListRecords(ctx context.Context, limit int) ([]core.Record, error) {
	query := `SELECT date, username, message FROM messages ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			rec               core.Record
			username, message sql.NullString
		)
		if err := rows.Scan(&rec.Date, &username, &message); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Username = fieldValue(username)
		rec.Message = fieldValue(message)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

func columnValue(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}

func fieldValue(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
