// Package pipeline drives one capture through normalization, classification,
// extraction, sequencing, aggregation and report emission.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/OpenFogStack/enoki/internal/aggregator"
	"github.com/OpenFogStack/enoki/internal/discover"
	"github.com/OpenFogStack/enoki/internal/extract"
	"github.com/OpenFogStack/enoki/internal/model"
	"github.com/OpenFogStack/enoki/internal/normalize"
	"github.com/OpenFogStack/enoki/internal/output"
	"github.com/OpenFogStack/enoki/internal/parser"
	"github.com/OpenFogStack/enoki/internal/sequencer"
	"github.com/rs/zerolog"
)

// Stats counts what happened to one capture at each stage.
type Stats struct {
	InputLines     int `json:"input_lines"`
	Cleaned        int `json:"cleaned"`  // empty or NUL-corrupted
	Rejected       int `json:"rejected"` // classifier errors
	PerfLines      int `json:"perf_lines"`
	DebugLines     int `json:"debug_lines"`
	OtherLines     int `json:"other_lines"`
	ReparseDropped int `json:"reparse_dropped"`
	Operations     int `json:"operations"`
	UnknownEvents  int `json:"unknown_events"`
	Aggregates     int `json:"aggregates"`
	Incomplete     int `json:"incomplete"`
	Rows           int `json:"rows"`
}

// RemovedCleaning is the number of input lines that never became a
// classified line.
func (s Stats) RemovedCleaning() int {
	return s.Cleaned + s.Rejected
}

// Report is the outcome of processing one capture.
type Report struct {
	Calls []*aggregator.FunctionCall
	Rows  []output.Row
	Stats Stats
}

// Options configure a Processor.
type Options struct {
	ClientFunction string
	PerfMarker     string
	DebugMarker    string
}

// Processor runs the per-capture stages. It holds no state between captures.
type Processor struct {
	parser parser.Parser
	client string
	log    zerolog.Logger
}

func NewProcessor(opts Options, log zerolog.Logger) *Processor {
	var popts []parser.Option
	if opts.PerfMarker != "" {
		popts = append(popts, parser.WithPerfMarker(opts.PerfMarker))
	}
	if opts.DebugMarker != "" {
		popts = append(popts, parser.WithDebugMarker(opts.DebugMarker))
	}

	return &Processor{
		parser: parser.NewHeaderParser(popts...),
		client: opts.ClientFunction,
		log:    log,
	}
}

// Process reads every source of run, merges their operations into one
// timestamp order and aggregates them.
func (p *Processor) Process(run discover.Run) (Report, error) {
	var (
		rep    Report
		perSrc [][]model.Operation
	)

	for _, src := range run.Sources {
		ops, err := p.readSource(src, &rep.Stats)
		if err != nil {
			return rep, fmt.Errorf("%s: %w", src, err)
		}
		perSrc = append(perSrc, ops)
	}

	ops := sequencer.Merge(perSrc...)
	rep.Stats.Operations = len(ops)

	agg := aggregator.New(p.client)
	for _, op := range ops {
		if err := agg.Apply(op); err != nil {
			rep.Stats.UnknownEvents++
			p.log.Warn().
				Str("run", run.Name).
				Str("xexecution", op.XExecution).
				Err(err).
				Msg("skipping operation")
		}
	}

	rep.Calls = agg.Calls()
	rep.Rows, rep.Stats.Incomplete = output.Rows(rep.Calls)
	rep.Stats.Aggregates = len(rep.Calls)
	rep.Stats.Rows = len(rep.Rows)

	for _, fc := range rep.Calls {
		if !fc.Derived.Resolved {
			p.log.Debug().
				Str("run", run.Name).
				Str("function", fc.Function).
				Str("xexecution", fc.XExecution).
				Bool("has_start", fc.HasStart).
				Bool("has_end", fc.HasEnd).
				Msg("dropping incomplete invocation")
		}
	}

	return rep, nil
}

// readSource runs normalization, classification and extraction on one file.
func (p *Processor) readSource(path string, stats *Stats) ([]model.Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clean, err := normalize.Lines(f, path)
	if err != nil {
		return nil, err
	}
	stats.InputLines += clean.Total
	stats.Cleaned += clean.Dropped

	classified := make([]model.ClassifiedLine, 0, len(clean.Lines))
	for _, raw := range clean.Lines {
		entry, err := p.parser.Parse(raw.Text)
		if err != nil {
			stats.Rejected++
			p.log.Warn().
				Str("file", filepath.Base(raw.Source)).
				Int("line", raw.Number).
				Err(err).
				Msg("rejecting line")
			continue
		}

		switch entry.Kind {
		case model.KindPerf:
			stats.PerfLines++
		case model.KindDebug:
			stats.DebugLines++
		default:
			stats.OtherLines++
		}
		classified = append(classified, entry)
	}

	res := extract.Operations(classified, func(record string, err error) {
		p.log.Warn().Str("file", filepath.Base(path)).Str("record", record).Err(err).Msg("dropping record")
	})
	stats.ReparseDropped += res.Dropped

	return res.Operations, nil
}
