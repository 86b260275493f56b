package sqlstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/sakif/alive-sleep/internal/config"
)

// Queries in this package are written once with '?' placeholders, which
// SQLite accepts as-is. PostgreSQL wants $1, $2, ... instead.
func rebind(driver, query string) string {
	if driver != config.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlDriverName maps a configured driver onto the name registered with database/sql.
func sqlDriverName(driver string) string {
	if driver == config.DriverPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Timestamps are stored as UTC Unix milliseconds and calendar dates as
// YYYY-MM-DD text, which compare correctly as strings in both engines.

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func formatDate(t time.Time) string { return t.UTC().Format(time.DateOnly) }

func parseDate(s string) (time.Time, error) { return time.Parse(time.DateOnly, s) }
