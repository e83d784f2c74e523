// Package service defines the task entity and the backend-agnostic storage contract.
package service

import "time"

// TimeLayout is the persisted form of Task.CreatedAt, shared by every backend.
const TimeLayout = "2006-01-02 15:04:05"

// Task represents a single to-do item.
type Task struct {
	ID          int64
	Description string
	CreatedAt   time.Time
	Completed   bool
}

// FormatTime renders t in the persisted layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a persisted timestamp in the local time zone.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.Local)
}
