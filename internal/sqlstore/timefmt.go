package sqlstore

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 UTC text in every dialect.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// now is replaced in tests that need deterministic timestamps.
var now = func() time.Time {
	return time.Now().UTC()
}
