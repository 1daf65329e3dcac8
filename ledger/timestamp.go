package ledger

import "time"

// Timestamp is a UTC RFC 3339 time with millisecond precision. Timestamps
// of equal length sort lexically in time order.
type Timestamp string

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(RFC3339Milli))
}

func (ts Timestamp) Time() (time.Time, error) {
	return time.Parse(RFC3339Milli, string(ts))
}
