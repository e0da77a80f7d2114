// Package service implements the ingestion pipeline: transformation,
// sanity checking, upserting and legacy migration.
package service

import (
	"fmt"
	"time"
)

// dateKeyLayout renders a time as a zero-padded DDMMYYYY key
const dateKeyLayout = "02012006"

// DateKey renders the snapshot key for a point in time. Two calls within
// the same calendar day (server-local time) yield the same key.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey validates that s is a real DDMMYYYY calendar date and
// returns it. Migration uses this to reject legacy identifiers that only
// look like dates.
func ParseDateKey(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, fmt.Errorf("date key %q: want 8 digits (DDMMYYYY)", s)
	}
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date key %q: %w", s, err)
	}
	if t.Format(dateKeyLayout) != s {
		return time.Time{}, fmt.Errorf("date key %q: not a calendar date", s)
	}
	return t, nil
}
