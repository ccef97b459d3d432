// Package repository defines the entity store contract used by the core
// services together with the errors shared by every backend. The MySQL
// implementation lives in this package; the in-memory one lives in
// repository/memory. Both return the sentinel values below so that higher
// layers can tell a missing row from an infrastructure failure.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row, or a row a write refers
// to, does not exist. Services translate it into a domain not-found error
// naming the entity.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as creating a user with a login that is already taken.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the store translates.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

// translate maps constraint violations onto the store sentinels and
// returns every other error unchanged.
func translate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return ErrConflict
		case mysqlNoReferencedRow:
			return ErrNotFound
		}
	}
	return err
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
