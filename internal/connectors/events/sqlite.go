package events

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteTable = "network_events"

// SQLiteStore keeps a local snapshot of events in a SQLite file.
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens path, creating the schema when missing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS network_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  down_time DATETIME NULL,
  up_time DATETIME NULL,
  date TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  region TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ne_down_time ON network_events(down_time);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ne_name_down_time ON network_events(name, down_time);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{sqlStore{db: db, table: sqliteTable, queryTimeout: 10 * time.Second}}, nil
}

// InsertEvents appends events to the snapshot and fills in their ids.
func (s *SQLiteStore) InsertEvents(ctx context.Context, items []Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO network_events (name, down_time, up_time, date, type, region, reason, category)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range items {
		e := &items[i]
		res, err := stmt.ExecContext(ctx, e.Name, storedTime(e.DownTime), storedTime(e.UpTime),
			e.Date, e.Type, e.Region, e.Reason, e.Category)
		if err != nil {
			return err
		}
		if id, err := res.LastInsertId(); err == nil {
			e.ID = id
		}
	}
	return tx.Commit()
}

func storedTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
