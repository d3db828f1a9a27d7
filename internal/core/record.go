package core

import "time"

// TimestampLayout is the textual date format of stored records, microsecond precision.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Record is the document persisted for every ingested message. Username and
// Message are strings for form submissions but hold whatever JSON value a
// raw ingest client sent: int64, float64, bool, nil, or nested maps and slices.
type Record struct {
	Date     string `bson:"date" json:"date"`
	Username any    `bson:"username" json:"username"`
	Message  any    `bson:"message" json:"message"`
}

// NewRecord stamps a message with the given ingest time.
func NewRecord(at time.Time, m Message) Record {
	return NewRecordValues(at, m.Username, m.Text)
}

// NewRecordValues stamps arbitrary field values with the given ingest time.
func NewRecordValues(at time.Time, username, message any) Record {
	return Record{
		Date:     FormatTimestamp(at),
		Username: username,
		Message:  message,
	}
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}
