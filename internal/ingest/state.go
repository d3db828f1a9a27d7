package ingest

// ConnState is a step in the life of one ingest connection.
type ConnState int

const (
	StateAccepted ConnState = iota
	StateReading
	StateParsed
	StateParseFailed
	StateInserted
	StateInsertFailed
	StateClosed
)

var stateNames = [...]string{
	StateAccepted:     "accepted",
	StateReading:      "reading",
	StateParsed:       "parsed",
	StateParseFailed:  "parse_failed",
	StateInserted:     "inserted",
	StateInsertFailed: "insert_failed",
	StateClosed:       "closed",
}

func (s ConnState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
