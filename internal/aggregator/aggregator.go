package aggregator

import (
	"errors"
	"fmt"
	"time"

	"github.com/OpenFogStack/enoki/internal/model"
)

// DefaultClientFunction names the load client, which only ever logs one
// outbound call per request and no start/end of its own.
const DefaultClientFunction = "client"

var (
	ErrUnknownEvent  = errors.New("unknown event type")
	ErrMissingTarget = errors.New("call event without target function")
)

// Key identifies one function invocation.
type Key struct {
	Function   string
	XExecution string
}

// Span is a start/end pair where either side may not have been seen yet.
type Span struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
}

// Duration returns End-Start once both sides are known.
func (s Span) Duration() (time.Duration, bool) {
	if !s.HasStart || !s.HasEnd {
		return 0, false
	}
	return s.End.Sub(s.Start), true
}

func (s *Span) mark(ts time.Time, start bool) {
	if start {
		s.Start, s.HasStart = ts, true
	} else {
		s.End, s.HasEnd = ts, true
	}
}

// DBKind tags a database operation.
type DBKind int

const (
	DBGet DBKind = iota
	DBSet
)

func (k DBKind) String() string {
	if k == DBSet {
		return "set"
	}
	return "get"
}

// CallRecord is an outbound call to Target.
type CallRecord struct {
	Target string
	XPair  string // xpair of the most recent event for this call
	Span
}

// DBRecord is one database operation, keyed by its own xpair.
type DBRecord struct {
	XPair string
	Kind  DBKind
	Span
}

// FunctionCall aggregates every event of one invocation.
type FunctionCall struct {
	Function   string
	XExecution string
	XContext   string
	XPair      string // set by the start event
	Span

	calls     map[string]*CallRecord
	callOrder []string
	dbOps     map[string]*DBRecord
	dbOrder   []string

	// Derived is recomputed after every applied event.
	Derived Derived
}

func newFunctionCall(op model.Operation) *FunctionCall {
	return &FunctionCall{
		Function:   op.Function,
		XExecution: op.XExecution,
		XContext:   op.XContext,
		calls:      make(map[string]*CallRecord),
		dbOps:      make(map[string]*DBRecord),
	}
}

// Calls returns the call records in the order their targets were first seen.
func (fc *FunctionCall) Calls() []CallRecord {
	out := make([]CallRecord, 0, len(fc.callOrder))
	for _, target := range fc.callOrder {
		out = append(out, *fc.calls[target])
	}
	return out
}

// DBOps returns the database records in the order they were first seen.
func (fc *FunctionCall) DBOps() []DBRecord {
	out := make([]DBRecord, 0, len(fc.dbOrder))
	for _, xpair := range fc.dbOrder {
		out = append(out, *fc.dbOps[xpair])
	}
	return out
}

func (fc *FunctionCall) call(target string) *CallRecord {
	c, ok := fc.calls[target]
	if !ok {
		c = &CallRecord{Target: target}
		fc.calls[target] = c
		fc.callOrder = append(fc.callOrder, target)
	}
	return c
}

func (fc *FunctionCall) dbOp(xpair string) *DBRecord {
	d, ok := fc.dbOps[xpair]
	if !ok {
		d = &DBRecord{XPair: xpair}
		fc.dbOps[xpair] = d
		fc.dbOrder = append(fc.dbOrder, xpair)
	}
	return d
}

// apply runs the transition for one validated operation.
func (fc *FunctionCall) apply(op model.Operation) {
	switch op.Type {
	case model.EventStart:
		fc.mark(op.Timestamp, true)
		fc.XPair = op.XPair
	case model.EventEnd:
		fc.mark(op.Timestamp, false)
	case model.EventCallStart, model.EventCallEnd:
		c := fc.call(op.Target)
		c.mark(op.Timestamp, op.Type == model.EventCallStart)
		c.XPair = op.XPair
	case model.EventDbGetStart, model.EventDbGetEnd:
		d := fc.dbOp(op.XPair)
		d.mark(op.Timestamp, op.Type == model.EventDbGetStart)
		d.Kind = DBGet
	case model.EventDbSetStart, model.EventDbSetEnd:
		d := fc.dbOp(op.XPair)
		d.mark(op.Timestamp, op.Type == model.EventDbSetStart)
		d.Kind = DBSet
	}
}

// Stats summarizes an aggregator's state.
type Stats struct {
	Applied    int
	Rejected   int
	Aggregates int
	Complete   int
}

// Aggregator replays time-ordered operations into per-invocation aggregates.
// Operations for a key must arrive in timestamp order.
type Aggregator struct {
	client   string
	calls    map[Key]*FunctionCall
	order    []Key
	applied  int
	rejected int
}

// New creates an Aggregator. clientFunction names the request-issuing
// pseudo-function; empty selects DefaultClientFunction.
func New(clientFunction string) *Aggregator {
	if clientFunction == "" {
		clientFunction = DefaultClientFunction
	}
	return &Aggregator{
		client: clientFunction,
		calls:  make(map[Key]*FunctionCall),
	}
}

// Apply folds op into the aggregate for (op.Function, op.XExecution),
// creating it on first sight. Operations with an unknown event, or call
// events without a target, are rejected and leave all state untouched.
func (a *Aggregator) Apply(op model.Operation) error {
	if op.Type == model.EventUnknown {
		a.rejected++
		return fmt.Errorf("%w: %q", ErrUnknownEvent, op.Event)
	}
	if op.Type.IsCall() && op.Target == "" {
		a.rejected++
		return fmt.Errorf("%w: %q", ErrMissingTarget, op.Event)
	}

	key := Key{Function: op.Function, XExecution: op.XExecution}
	fc, ok := a.calls[key]
	if !ok {
		fc = newFunctionCall(op)
		a.calls[key] = fc
		a.order = append(a.order, key)
	}

	fc.apply(op)
	fc.Derived = derive(fc, a.client)
	a.applied++
	return nil
}

// Calls returns all aggregates in first-seen order.
func (a *Aggregator) Calls() []*FunctionCall {
	out := make([]*FunctionCall, len(a.order))
	for i, k := range a.order {
		out[i] = a.calls[k]
	}
	return out
}

// Get returns the aggregate for key, if any.
func (a *Aggregator) Get(key Key) (*FunctionCall, bool) {
	fc, ok := a.calls[key]
	return fc, ok
}

// Snapshot returns counters over the current state.
func (a *Aggregator) Snapshot() Stats {
	s := Stats{
		Applied:    a.applied,
		Rejected:   a.rejected,
		Aggregates: len(a.order),
	}
	for _, fc := range a.calls {
		if fc.Derived.Resolved {
			s.Complete++
		}
	}
	return s
}
