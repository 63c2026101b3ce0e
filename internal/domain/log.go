package domain

import "time"

const (
	MinPageSize = 1
	MaxPageSize = 1000

	MinWindowHours = 1
	MaxWindowHours = 168
)

// LogQuery is the backend query built for a single request.
type LogQuery struct {
	ResourceID string
	LogGroupID string
	Since      time.Time
	Until      time.Time
	PageSize   int
	PageToken  string // empty when requesting the first page
}

// NewLogQuery builds a LogQuery with the page size clamped to [MinPageSize, MaxPageSize].
func NewLogQuery(logGroupID, resourceID string, since, until time.Time, pageSize int, pageToken string) LogQuery {
	return LogQuery{
		ResourceID: resourceID,
		LogGroupID: logGroupID,
		Since:      since,
		Until:      until,
		PageSize:   ClampPageSize(pageSize),
		PageToken:  pageToken,
	}
}

// LogEntry is a single entry as returned by the log backend.
type LogEntry struct {
	Timestamp time.Time
	Level     int32          // backend LogLevel.Level enum value
	Message   string         // empty when the backend sent none
	Payload   map[string]any // nil when the entry has no structured payload
}

// LogPage is one page of backend results.
type LogPage struct {
	Entries       []LogEntry
	NextPageToken string
}

// TimeWindow is an absolute [Since, Until] range.
type TimeWindow struct {
	Since time.Time
	Until time.Time
}

// NewTimeWindow returns the window of the given length ending at now.
// hours is clamped to [MinWindowHours, MaxWindowHours].
func NewTimeWindow(now time.Time, hours int) TimeWindow {
	hours = clamp(hours, MinWindowHours, MaxWindowHours)
	return TimeWindow{
		Since: now.Add(-time.Duration(hours) * time.Hour),
		Until: now,
	}
}

func ClampPageSize(n int) int {
	return clamp(n, MinPageSize, MaxPageSize)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
