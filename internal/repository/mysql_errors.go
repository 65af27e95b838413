package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// IsDuplicateEntry reports whether err is MySQL's duplicate-key violation
// (error 1062) from a UNIQUE index.
func IsDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isLockContention reports a deadlock (1213) or lock wait timeout (1205).
// Both mean the transaction lost a lock race and is safe to re-run.
func isLockContention(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1213 || me.Number == 1205)
}
