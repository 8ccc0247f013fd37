//go:build !sqlite_cgo

package sqlstore

// Built by default and with CGO_ENABLED=0. Uses the pure Go SQLite port.
//
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// SQLiteDriverName is the database/sql driver registered for SQLite.
	SQLiteDriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
