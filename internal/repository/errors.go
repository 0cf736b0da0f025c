// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// booking service and the handlers to distinguish between different
// failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.  Handlers
// should translate this into an HTTP 404 response.
var ErrSeatNotFound = errors.New("seat not found")

// ErrConflict is returned when a write cannot be applied because of
// conflicting state: a seat number that already exists, or a booking
// update that found the seat no longer available.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
