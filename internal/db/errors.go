package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants map to Valkey/Redis command names or Postgres operations for error context.
const (
	OpPing    = "PING"
	OpUnlink  = "UNLINK"
	OpScan    = "SCAN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpConnect = "CONNECT"
	OpQuery   = "QUERY"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
