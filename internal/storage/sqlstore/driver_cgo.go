//go:build sqlite_cgo

package sqlstore

// Compiled with the sqlite_cgo tag. Links the C SQLite library.
//
//   CGO_ENABLED=1 go build -tags sqlite_cgo ./...
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// SQLiteDriverName is the database/sql driver registered for SQLite.
	SQLiteDriverName = "sqlite3"

	// BuildMode describes the current build configuration.
	BuildMode = "cgo"
)
