package postgres

import "time"

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

// limitArg binds a LIMIT parameter. Non-positive limits bind NULL, which
// Postgres treats as LIMIT ALL.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
