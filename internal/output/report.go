package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/OpenFogStack/enoki/internal/aggregator"
)

// Header is the column set downstream tooling expects.
var Header = []string{"function", "xcontext", "xexecution", "xpair", "time_type", "time"}

var ErrHeader = errors.New("unexpected report header")

// Row is one timing measurement of one invocation.
type Row struct {
	Function   string  `json:"function"`
	XContext   string  `json:"xcontext"`
	XExecution string  `json:"xexecution"`
	XPair      string  `json:"xpair"`
	TimeType   string  `json:"time_type"`
	Time       float64 `json:"time"` // seconds
}

// Rows flattens aggregates into report rows: total and proc, then one row
// per completed call and db operation. Aggregates without a resolved total
// are skipped and counted in incomplete.
func Rows(calls []*aggregator.FunctionCall) (rows []Row, incomplete int) {
	for _, fc := range calls {
		d := fc.Derived
		if !d.Resolved {
			incomplete++
			continue
		}

		row := func(xpair, timeType string, dur time.Duration) Row {
			return Row{
				Function:   fc.Function,
				XContext:   fc.XContext,
				XExecution: fc.XExecution,
				XPair:      xpair,
				TimeType:   timeType,
				Time:       dur.Seconds(),
			}
		}

		rows = append(rows,
			row(d.XPair, "total", d.Total),
			row(d.XPair, "proc", d.Proc),
		)
		for _, c := range d.Calls {
			rows = append(rows, row(c.XPair, c.TimeType, c.Total))
		}
		for _, db := range d.DBOps {
			rows = append(rows, row(db.XPair, db.TimeType, db.Total))
		}
	}
	return rows, incomplete
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Function, r.XContext, r.XExecution, r.XPair, r.TimeType, FormatSeconds(r.Time)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadReport parses a report written by WriteCSV.
func ReadReport(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrHeader)
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("%w: %v", ErrHeader, head)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		secs, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			line, _ := cr.FieldPos(5)
			return nil, fmt.Errorf("line %d: invalid time %q: %w", line, rec[5], err)
		}
		rows = append(rows, Row{
			Function:   rec[0],
			XContext:   rec[1],
			XExecution: rec[2],
			XPair:      rec[3],
			TimeType:   rec[4],
			Time:       secs,
		})
	}
}

// FormatSeconds renders secs with the fewest digits that round-trip.
func FormatSeconds(secs float64) string {
	return strconv.FormatFloat(secs, 'f', -1, 64)
}
