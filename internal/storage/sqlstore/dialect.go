package sqlstore

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// dialect captures what differs between the supported databases. Queries
// are written with '?' placeholders and rebound per dialect.
type dialect struct {
	name       string
	driver     string
	migrations []Migration
	// numbered placeholders ($1, $2, ...) instead of '?'
	numbered bool
	// schemaVersionExists reports whether the version table is present
	schemaVersionExists string
	isUniqueViolation   func(error) bool
	timeArg             func(time.Time) any
}

// timeLayout sorts lexically in chronological order for UTC values.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var sqliteDialect = dialect{
	name:                "sqlite",
	driver:              SQLiteDriverName,
	migrations:          sqliteMigrations,
	schemaVersionExists: "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	isUniqueViolation: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
	timeArg: func(t time.Time) any {
		return t.UTC().Format(timeLayout)
	},
}

var postgresDialect = dialect{
	name:                "postgres",
	driver:              "postgres",
	migrations:          postgresMigrations,
	numbered:            true,
	schemaVersionExists: "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'schema_version'",
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
	timeArg: func(t time.Time) any {
		return t.UTC()
	},
}

// rebind rewrites '?' placeholders for the dialect.
func (d dialect) rebind(query string) string {
	if !d.numbered {
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

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
