package aggregator

import "time"

// Derived holds the timing breakdown of one invocation.
type Derived struct {
	// Resolved is false until both Total and Proc are known.
	Resolved bool
	// Begin is where the Total span starts.
	Begin time.Time
	Total time.Duration
	// Proc is Total minus completed call and db time. It is not clamped and
	// goes negative when recorded spans overlap.
	Proc time.Duration
	// XPair is the xpair reported for the total and proc rows.
	XPair string

	Calls []Timed // completed calls, first-seen order
	DBOps []Timed // completed db operations, first-seen order
}

// Timed is a completed sub-span.
type Timed struct {
	XPair    string
	TimeType string // call-<target>, db-get or db-set
	Start    time.Time
	Total    time.Duration
}

// derive computes the Derived view of fc. It does not modify fc.
func derive(fc *FunctionCall, clientFunction string) Derived {
	d := Derived{XPair: fc.XPair}

	var sub time.Duration
	for _, target := range fc.callOrder {
		c := fc.calls[target]
		if total, ok := c.Duration(); ok {
			d.Calls = append(d.Calls, Timed{XPair: c.XPair, TimeType: "call-" + target, Start: c.Start, Total: total})
			sub += total
		}
	}
	for _, xpair := range fc.dbOrder {
		op := fc.dbOps[xpair]
		if total, ok := op.Duration(); ok {
			d.DBOps = append(d.DBOps, Timed{XPair: op.XPair, TimeType: "db-" + op.Kind.String(), Start: op.Start, Total: total})
			sub += total
		}
	}

	// The client's whole request is its first outbound call.
	if fc.Function == clientFunction && len(fc.callOrder) > 0 {
		first := fc.calls[fc.callOrder[0]]
		if total, ok := first.Duration(); ok {
			d.Resolved = true
			d.Begin = first.Start
			d.Total = total
			d.Proc = total
			d.XPair = first.XPair
			return d
		}
	}

	total, ok := fc.Duration()
	if !ok {
		return d
	}
	d.Resolved = true
	d.Begin = fc.Start
	d.Total = total
	d.Proc = total - sub
	return d
}
