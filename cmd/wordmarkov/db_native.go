//go:build !cgo_sqlite

package main

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

// openDB opens the chain database with the pure Go SQLite driver. That driver
// takes pragmas as _pragma=name(value) parameters, so the _journal_mode and
// _busy_timeout shorthands shared with the cgo driver are rewritten.
func openDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite", nativeDSN(dataSource))
}

func nativeDSN(dataSource string) string {
	path, query, found := strings.Cut(dataSource, "?")
	if !found {
		return dataSource
	}
	params := strings.Split(query, "&")
	for i, param := range params {
		name, value, _ := strings.Cut(param, "=")
		switch name {
		case "_journal_mode":
			params[i] = "_pragma=journal_mode(" + value + ")"
		case "_busy_timeout":
			params[i] = "_pragma=busy_timeout(" + value + ")"
		}
	}
	return path + "?" + strings.Join(params, "&")
}
