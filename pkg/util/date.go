package util

import (
    "strconv"
    "time"
)

var timeLayouts = []string{
    time.RFC3339,
    time.RFC3339Nano,
    "2006-01-02",
}

// ParseTime accepts RFC3339 (with or without fractional seconds), a bare
// date, or unix seconds. Returns (t, true) on the first layout that matches.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    for _, layout := range timeLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t, true
        }
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimePtr parses time or returns nil if empty/invalid.
func ParseTimePtr(s string) *time.Time {
    if t, ok := ParseTime(s); ok {
        return &t
    }
    return nil
}
