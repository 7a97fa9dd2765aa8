package events

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-net-uptime-dashboard/internal/config"
)

// MySQLStore reads events from the uptime backend's MySQL database. It never
// writes.
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore opens and pings the event database.
func NewMySQLStore(cfg config.Config) (*MySQLStore, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &MySQLStore{sqlStore{db: db, table: cfg.EventsTable, queryTimeout: cfg.DBQueryTimeout}}, nil
}
