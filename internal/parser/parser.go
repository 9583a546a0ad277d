package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OpenFogStack/enoki/internal/model"
)

const (
	DefaultPerfMarker  = "BEFAAS"
	DefaultDebugMarker = "DEBUG"
)

var (
	ErrFieldCount  = errors.New("line has fewer than five header fields")
	ErrHeaderField = errors.New("header field is not key=value")
	ErrTimestamp   = errors.New("invalid timestamp")
	ErrPerfFormat  = errors.New("malformed perf record")
	ErrDebugFormat = errors.New("malformed debug record")
)

// Parser converts a cleaned log line into a ClassifiedLine.
type Parser interface {
	Parse(line string) (model.ClassifiedLine, error)
}

// ---------------------------------------------------------------------------
// Header Parser
// ---------------------------------------------------------------------------

// HeaderParser handles lines written by the function runtime and the load
// clients:
//
//	function=<name> handler=<id> stream=<stdout|stderr> <timestamp> <content>
//
// The content is then classified by its leading marker.
type HeaderParser struct {
	perfMarker  string
	debugMarker string
}

// Option configures a HeaderParser.
type Option func(*HeaderParser)

// WithPerfMarker overrides the prefix that identifies performance records.
func WithPerfMarker(m string) Option {
	return func(p *HeaderParser) { p.perfMarker = m }
}

// WithDebugMarker overrides the prefix that identifies debug records.
func WithDebugMarker(m string) Option {
	return func(p *HeaderParser) { p.debugMarker = m }
}

func NewHeaderParser(opts ...Option) *HeaderParser {
	p := &HeaderParser{
		perfMarker:  DefaultPerfMarker,
		debugMarker: DefaultDebugMarker,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *HeaderParser) Parse(line string) (model.ClassifiedLine, error) {
	var entry model.ClassifiedLine

	fields := strings.SplitN(line, " ", 5)
	if len(fields) < 5 {
		return entry, fmt.Errorf("%w: got %d", ErrFieldCount, len(fields))
	}

	var err error
	if entry.Function, err = headerValue(fields[0]); err != nil {
		return entry, err
	}
	if entry.Handler, err = headerValue(fields[1]); err != nil {
		return entry, err
	}
	if entry.Stream, err = headerValue(fields[2]); err != nil {
		return entry, err
	}
	if entry.Timestamp, err = ParseTimestamp(fields[3]); err != nil {
		return entry, err
	}

	content := fields[4]
	switch {
	case strings.HasPrefix(content, p.perfMarker):
		err = parsePerf(&entry, content)
	case strings.HasPrefix(content, p.debugMarker):
		err = parseDebug(&entry, content)
	default:
		entry.Kind = model.KindOther
		entry.Event = content
	}
	return entry, err
}

// parsePerf fills entry from MARKER;timestamp;function;xpair;xexecution;xcontext;event.
// The record's own clock read replaces the coarser header timestamp.
func parsePerf(entry *model.ClassifiedLine, content string) error {
	parts := strings.SplitN(content, ";", 7)
	if len(parts) != 7 {
		return fmt.Errorf("%w: %d of 7 fields", ErrPerfFormat, len(parts))
	}

	ts, err := ParseTimestamp(parts[1])
	if err != nil {
		return err
	}

	entry.Kind = model.KindPerf
	entry.Timestamp = ts
	entry.XPair = parts[3]
	entry.XExecution = parts[4]
	entry.XContext = parts[5]
	entry.Event = parts[6]
	return nil
}

// parseDebug keeps only the trailing event text of MARKER;timestamp;function;event.
func parseDebug(entry *model.ClassifiedLine, content string) error {
	parts := strings.SplitN(content, ";", 4)
	if len(parts) != 4 {
		return fmt.Errorf("%w: %d of 4 fields", ErrDebugFormat, len(parts))
	}

	entry.Kind = model.KindDebug
	entry.Event = parts[3]
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// ParseTimestamp parses an RFC 3339 timestamp with an explicit offset and
// optional fractional seconds down to nanoseconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q", ErrTimestamp, s)
	}
	return t, nil
}

// headerValue returns the value of a key=value header field.
func headerValue(field string) (string, error) {
	_, v, ok := strings.Cut(field, "=")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrHeaderField, field)
	}
	return v, nil
}
