package output

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/OpenFogStack/enoki/internal/aggregator"
)

// TraceEvent is a complete ("X") event of the Chrome Trace Event Format.
type TraceEvent struct {
	Name      string            `json:"name"`
	Category  string            `json:"cat"`
	Phase     string            `json:"ph"`
	Timestamp float64           `json:"ts"`  // microseconds since the earliest event
	Duration  float64           `json:"dur"` // microseconds
	ProcessID int               `json:"pid"`
	ThreadID  int               `json:"tid"`
	Args      map[string]string `json:"args,omitempty"`
}

// Trace is the top-level JSON object chrome://tracing and Perfetto load.
type Trace struct {
	TraceEvents     []TraceEvent `json:"traceEvents"`
	DisplayTimeUnit string       `json:"displayTimeUnit"`
}

// BuildTrace lays out resolved aggregates as nested spans: one process per
// xcontext and one thread per xexecution, both numbered in first-seen order.
func BuildTrace(calls []*aggregator.FunctionCall) Trace {
	var (
		origin time.Time
		seen   bool
	)
	for _, fc := range calls {
		if fc.Derived.Resolved && (!seen || fc.Derived.Begin.Before(origin)) {
			origin, seen = fc.Derived.Begin, true
		}
	}

	pids := make(map[string]int)
	tids := make(map[string]int)
	id := func(m map[string]int, k string) int {
		if v, ok := m[k]; ok {
			return v
		}
		m[k] = len(m) + 1
		return m[k]
	}
	micros := func(d time.Duration) float64 {
		return float64(d.Nanoseconds()) / 1e3
	}

	events := []TraceEvent{}
	for _, fc := range calls {
		d := fc.Derived
		if !d.Resolved {
			continue
		}
		pid := id(pids, fc.XContext)
		tid := id(tids, fc.XExecution)

		events = append(events, TraceEvent{
			Name:      fc.Function,
			Category:  "invocation",
			Phase:     "X",
			Timestamp: micros(d.Begin.Sub(origin)),
			Duration:  micros(d.Total),
			ProcessID: pid,
			ThreadID:  tid,
			Args: map[string]string{
				"xcontext":   fc.XContext,
				"xexecution": fc.XExecution,
				"xpair":      d.XPair,
				"proc":       FormatSeconds(d.Proc.Seconds()),
			},
		})

		for _, sub := range slices.Concat(d.Calls, d.DBOps) {
			events = append(events, TraceEvent{
				Name:      sub.TimeType,
				Category:  fc.Function,
				Phase:     "X",
				Timestamp: micros(sub.Start.Sub(origin)),
				Duration:  micros(sub.Total),
				ProcessID: pid,
				ThreadID:  tid,
				Args:      map[string]string{"xpair": sub.XPair},
			})
		}
	}

	slices.SortStableFunc(events, func(a, b TraceEvent) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	return Trace{TraceEvents: events, DisplayTimeUnit: "ms"}
}

// WriteChromeTrace writes BuildTrace(calls) to w as JSON.
func WriteChromeTrace(w io.Writer, calls []*aggregator.FunctionCall) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	return enc.Encode(BuildTrace(calls))
}
