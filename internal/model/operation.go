package model

import (
	"strings"
	"time"
)

// EventType is the decoded form of a perf event name.
type EventType int

const (
	EventUnknown EventType = iota
	EventStart
	EventEnd
	EventCallStart
	EventCallEnd
	EventDbGetStart
	EventDbGetEnd
	EventDbSetStart
	EventDbSetEnd
)

var eventNames = map[EventType]string{
	EventUnknown:    "unknown",
	EventStart:      "start",
	EventEnd:        "end",
	EventCallStart:  "start-call",
	EventCallEnd:    "end-call",
	EventDbGetStart: "start-db-get",
	EventDbGetEnd:   "end-db-get",
	EventDbSetStart: "start-db-set",
	EventDbSetEnd:   "end-db-set",
}

func (e EventType) String() string {
	return eventNames[e]
}

// IsCall reports whether e is one side of a downstream function call.
func (e EventType) IsCall() bool {
	return e == EventCallStart || e == EventCallEnd
}

// IsDB reports whether e is one side of a database operation.
func (e EventType) IsDB() bool {
	return e >= EventDbGetStart && e <= EventDbSetEnd
}

// DecodeEvent maps an event name to its EventType. For call events the
// target function is the third hyphen-delimited segment and is returned
// alongside; it is empty when the name carries no target.
func DecodeEvent(name string) (EventType, string) {
	switch {
	case strings.HasPrefix(name, "start-call"):
		return EventCallStart, callTarget(name)
	case strings.HasPrefix(name, "end-call"):
		return EventCallEnd, callTarget(name)
	case strings.HasPrefix(name, "start-db-get"):
		return EventDbGetStart, ""
	case strings.HasPrefix(name, "end-db-get"):
		return EventDbGetEnd, ""
	case strings.HasPrefix(name, "start-db-set"):
		return EventDbSetStart, ""
	case strings.HasPrefix(name, "end-db-set"):
		return EventDbSetEnd, ""
	case name == "start":
		return EventStart, ""
	case name == "end":
		return EventEnd, ""
	}
	return EventUnknown, ""
}

func callTarget(name string) string {
	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// Operation is the minimal record the sequencer orders and the aggregator replays.
type Operation struct {
	Timestamp  time.Time
	Function   string
	XPair      string
	XExecution string
	XContext   string
	Event      string

	// Type and Target are decoded from Event once, when the record is parsed.
	Type   EventType
	Target string
}
