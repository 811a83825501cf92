package sqlstore

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect is the SQL flavour a DB speaks.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// timeLayout sorts lexically in time order, which SQLite TEXT columns rely on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ParseDialect maps a driver name from configuration to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite"
	}
	return "pgx"
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Rebind rewrites ? placeholders into $1, $2, ... for PostgreSQL.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// timeArg converts a timestamp to the value the driver stores.
func (d Dialect) timeArg(t time.Time) driver.Value {
	t = t.UTC()
	if d == SQLite {
		return t.Format(timeLayout)
	}
	return t
}

// isUniqueViolation reports whether err is a unique constraint failure.
func (d Dialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func (d Dialect) schema() []string {
	if d == SQLite {
		return []string{
			`CREATE TABLE IF NOT EXISTS vegetables (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				weight_unit TEXT NOT NULL,
				image_url TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS vegetables_name_key ON vegetables (LOWER(name))`,
			`CREATE INDEX IF NOT EXISTS vegetables_created_at_idx ON vegetables (created_at DESC)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS vegetables (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			weight_unit TEXT NOT NULL,
			image_url TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS vegetables_name_key ON vegetables (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS vegetables_created_at_idx ON vegetables (created_at DESC)`,
	}
}

// timestamp scans TIMESTAMPTZ values and SQLite TEXT timestamps alike.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (t *timestamp) parse(s string) error {
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}
