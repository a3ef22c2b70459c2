package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// uniqueViolation reports the violated constraint name when err is a unique
// violation.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	if string(pqErr.Code) != uniqueViolationCode {
		return "", false
	}
	return pqErr.Constraint, true
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func nullStringValue(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// nonNilStrings keeps empty arrays as '{}' instead of NULL.
func nonNilStrings(items []string) pq.StringArray {
	if items == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(items)
}
