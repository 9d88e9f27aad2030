// Package sqlxrepos implements the domain Repository interfaces on top of
// PostgreSQL via sqlx.
package sqlxrepos

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// trapNoRowsErr maps psql "no rows" err to the domain's not-found error.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a psql unique_violation on the
// given constraint.
func isUniqueViolation(err error, constraint string) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraint
	}
	return false
}
