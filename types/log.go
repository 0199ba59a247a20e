package types

import "time"

// LogEntry is the in-memory shape handed to the async request logger.
type LogEntry struct {
	Method          string
	URL             string
	RequestBody     string
	RequestHeaders  string
	ResponseBody    string
	ResponseHeaders string
	StatusCode      int
	UserID          *uint
	CreatedAt       time.Time
}
