package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var sqliteConstraintPrefixes = []string{
	"UNIQUE constraint failed: ",
	"NOT NULL constraint failed: ",
	"CHECK constraint failed: ",
}

// ErrorDump is the structured view of an error chain used by request logs
// and by the development error detail of 500 responses.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	// Detail reads wrapper to root cause, e.g. "db: list inventory items: connection refused".
	Detail string   `json:"detail,omitempty"`
	Chain  []string `json:"chain,omitempty"`

	Driver     string `json:"db_driver,omitempty"`
	DBCode     string `json:"db_code,omitempty"`
	Constraint string `json:"db_constraint,omitempty"`
	Table      string `json:"db_table,omitempty"`
	Column     string `json:"db_column,omitempty"`
	DBDetail   string `json:"db_detail,omitempty"`
	DBMessage  string `json:"db_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
		Detail:     detail(err),
	}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.Driver = DriverPostgres
		d.DBCode = pgxErr.Code
		d.Constraint = pgxErr.ConstraintName
		d.Table = pgxErr.TableName
		d.Column = pgxErr.ColumnName
		d.DBDetail = pgxErr.Detail
		d.DBMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.Driver = DriverPostgres
		d.DBCode = string(pqErr.Code)
		d.Constraint = pqErr.Constraint
		d.Table = pqErr.Table
		d.Column = pqErr.Column
		d.DBDetail = pqErr.Detail
		d.DBMessage = pqErr.Message
		return d
	}

	fillSQLite(&d, err)
	return d
}

// detail joins the typed messages of the chain and ends with the first
// untyped error, whose text already includes anything it wraps.
func detail(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		typed, ok := e.(*Error)
		if !ok {
			parts = append(parts, e.Error())
			break
		}
		if typed.message != "" {
			parts = append(parts, typed.message)
		}
	}
	return strings.Join(parts, ": ")
}

// fillSQLite recognises constraint failures from the sqlite driver, which
// only reports them as text such as "UNIQUE constraint failed: users.slot".
func fillSQLite(d *ErrorDump, err error) {
	msg := err.Error()
	for _, prefix := range sqliteConstraintPrefixes {
		idx := strings.Index(msg, prefix)
		if idx < 0 {
			continue
		}
		d.Driver = DriverSQLite
		d.DBCode = strings.TrimSuffix(prefix, " constraint failed: ")
		d.DBMessage = msg[idx:]
		target := strings.TrimSpace(msg[idx+len(prefix):])
		if comma := strings.Index(target, ","); comma >= 0 {
			target = target[:comma]
		}
		if table, column, ok := strings.Cut(target, "."); ok {
			d.Table = table
			d.Column = column
		}
		return
	}
	if idx := strings.Index(msg, "FOREIGN KEY constraint failed"); idx >= 0 {
		d.Driver = DriverSQLite
		d.DBCode = "FOREIGN KEY"
		d.DBMessage = msg[idx:]
	}
}
