package model

import "time"

// LineKind tags a classified log line.
type LineKind int

const (
	KindOther LineKind = iota
	KindDebug
	KindPerf
)

func (k LineKind) String() string {
	switch k {
	case KindPerf:
		return "perf"
	case KindDebug:
		return "debug"
	default:
		return "other"
	}
}

// RawLine is one cleaned line of input text together with the file it came from.
type RawLine struct {
	Text   string
	Source string // originating file path
	Number int    // 1-based line number in the source file
}

// ClassifiedLine is a parsed log line. XPair, XExecution and XContext are
// only set when Kind is KindPerf.
type ClassifiedLine struct {
	Function  string
	Handler   string
	Stream    string
	Timestamp time.Time
	Kind      LineKind

	XPair      string
	XExecution string
	XContext   string

	// Event is the perf event name, the debug payload, or the whole content.
	Event string
}
