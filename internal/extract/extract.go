// Package extract turns performance-classified lines into Operations via a
// compact, re-serializable record form:
//
//	timestamp,function,xpair,xexecution,xcontext,event
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OpenFogStack/enoki/internal/model"
	"github.com/OpenFogStack/enoki/internal/parser"
)

var ErrRecordFields = errors.New("record has fewer than six fields")

// Result holds the operations extracted from one file.
type Result struct {
	Operations []model.Operation
	Dropped    int // records that failed to re-parse
}

// Operations encodes every perf line in lines and re-parses it. Non-perf
// lines are skipped; records that fail to re-parse are dropped and counted.
// Each failure is passed to onDrop when it is non-nil.
func Operations(lines []model.ClassifiedLine, onDrop func(record string, err error)) Result {
	var res Result

	for _, line := range lines {
		if line.Kind != model.KindPerf {
			continue
		}

		record := Encode(line)
		op, err := Decode(record)
		if err != nil {
			res.Dropped++
			if onDrop != nil {
				onDrop(record, err)
			}
			continue
		}
		res.Operations = append(res.Operations, op)
	}

	return res
}

// Encode renders a perf line as a record.
func Encode(line model.ClassifiedLine) string {
	return strings.Join([]string{
		line.Timestamp.Format(time.RFC3339Nano),
		line.Function,
		line.XPair,
		line.XExecution,
		line.XContext,
		line.Event,
	}, ",")
}

// Decode parses a record into an Operation and decodes its event name.
func Decode(record string) (model.Operation, error) {
	fields := strings.SplitN(record, ",", 6)
	if len(fields) < 6 {
		return model.Operation{}, fmt.Errorf("%w: got %d", ErrRecordFields, len(fields))
	}

	ts, err := parser.ParseTimestamp(fields[0])
	if err != nil {
		return model.Operation{}, err
	}

	typ, target := model.DecodeEvent(fields[5])

	return model.Operation{
		Timestamp:  ts,
		Function:   fields[1],
		XPair:      fields[2],
		XExecution: fields[3],
		XContext:   fields[4],
		Event:      fields[5],
		Type:       typ,
		Target:     target,
	}, nil
}
