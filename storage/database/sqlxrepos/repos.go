// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
// Each repository maps between its domain struct and a private row struct so
// the core packages never leak db tags.
package sqlxrepos

import (
	"database/sql"
	"strings"
	"time"
)

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
