package database

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
)

// RequireRows returns notFound when res affected no rows. When the driver
// cannot report the count the result is a storage error carrying msg.
func RequireRows(res sql.Result, msg string, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(errcodes.Storage(msg, err))
	}
	if n == 0 {
		return notFound
	}
	return nil
}
