package database

import "database/sql"

// Querier is the query surface shared by *sql.DB and *sql.Tx.
// Registry mutations that must run inside the consolidation or scoring
// transaction take a Querier so the same handler code serves both paths.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
