package events

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const eventColumns = `id, name, down_time, up_time, date, type, region, reason, category`

// sqlStore runs the listing queries shared by the MySQL and SQLite backends.
// Both accept ? placeholders and DATE()/LOWER().
type sqlStore struct {
	db           *sql.DB
	table        string
	queryTimeout time.Duration
}

func (s *sqlStore) ListEvents(ctx context.Context, f Filter) ([]Event, error) {
	return s.list(ctx, "", f)
}

func (s *sqlStore) ListHostEvents(ctx context.Context, name string, f Filter) ([]Event, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("host name required")
	}
	return s.list(ctx, name, f)
}

func (s *sqlStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqlStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *sqlStore) list(ctx context.Context, host string, f Filter) ([]Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := buildWhere(host, f)
	query := fmt.Sprintf(`
SELECT %s
FROM %s
%s
ORDER BY down_time ASC, id ASC;
`, eventColumns, s.table, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0, 64)
	for rows.Next() {
		var (
			e                                   Event
			downRaw, upRaw                      any
			date, typ, region, reason, category sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Name, &downRaw, &upRaw, &date, &typ, &region, &reason, &category); err != nil {
			return nil, err
		}
		if e.DownTime, err = asTime(downRaw); err != nil {
			return nil, fmt.Errorf("event %d down_time: %w", e.ID, err)
		}
		if e.UpTime, err = asTime(upRaw); err != nil {
			return nil, fmt.Errorf("event %d up_time: %w", e.ID, err)
		}
		e.Date = date.String
		e.Type = typ.String
		e.Region = region.String
		e.Reason = reason.String
		e.Category = category.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func buildWhere(host string, f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if host != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, host)
	}
	if f.Name != "" {
		like := "%" + strings.ToLower(f.Name) + "%"
		clauses = append(clauses, "(LOWER(name) LIKE ? OR LOWER(reason) LIKE ? OR LOWER(date) LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.StartDate != nil {
		clauses = append(clauses, "DATE(down_time) >= ?")
		args = append(args, f.StartDate.Format("2006-01-02"))
	}
	if f.EndDate != nil {
		clauses = append(clauses, "DATE(down_time) <= ?")
		args = append(args, f.EndDate.Format("2006-01-02"))
	}
	if f.Type != "" {
		clauses = append(clauses, "LOWER(type) = ?")
		args = append(args, strings.ToLower(f.Type))
	}
	if f.OngoingOnly {
		clauses = append(clauses, "down_time IS NOT NULL AND up_time IS NULL")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// asTime converts a scanned DATETIME value. MySQL with parseTime returns
// time.Time; SQLite may hand back text.
func asTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &t, nil
	case []byte:
		return parseStoredTime(string(t))
	case string:
		return parseStoredTime(t)
	default:
		return nil, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseStoredTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable time %q", raw)
}
