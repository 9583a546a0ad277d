package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/OpenFogStack/enoki/internal/discover"
	"github.com/OpenFogStack/enoki/internal/manifest"
	"github.com/OpenFogStack/enoki/internal/output"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RunnerConfig controls directory-level processing.
type RunnerConfig struct {
	Include     string
	Workers     int
	ChromeTrace bool
	Incremental bool
}

// Result is the outcome for one run.
type Result struct {
	Run     discover.Run
	Output  string
	Stats   Stats
	Skipped bool
	Err     error
}

// Summary converts r for rendering.
func (r Result) Summary() output.Summary {
	s := output.Summary{
		Input:             r.Run.Name,
		Output:            r.Output,
		Skipped:           r.Skipped,
		RemovedCleaning:   r.Stats.RemovedCleaning(),
		RemovedReparsing:  r.Stats.ReparseDropped,
		DroppedAggregates: r.Stats.Incomplete,
		Operations:        r.Stats.Operations,
		UnknownEvents:     r.Stats.UnknownEvents,
		Aggregates:        r.Stats.Aggregates,
		Rows:              r.Stats.Rows,
	}
	if len(r.Run.Sources) == 1 {
		s.Input = filepath.Base(r.Run.Sources[0])
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// Runner processes every run of an input directory into an output directory.
// Runs share no state, so they may be processed concurrently; results are
// always returned in run order.
type Runner struct {
	proc *Processor
	cfg  RunnerConfig
	log  zerolog.Logger
}

func NewRunner(proc *Processor, cfg RunnerConfig, log zerolog.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{proc: proc, cfg: cfg, log: log}
}

// Run processes inDir into outDir. Failures of individual runs are reported
// in their Result; the returned error covers listing the input, preparing
// the output directory, saving the manifest, and cancellation of ctx.
func (r *Runner) Run(ctx context.Context, inDir, outDir string) ([]Result, error) {
	runs, err := discover.Find(inDir, r.cfg.Include)
	if err != nil {
		return nil, fmt.Errorf("list input: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	man, err := manifest.Load(outDir, r.log)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	results := make([]Result, len(runs))

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.Workers)
	for i, run := range runs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Run: run, Err: err}
				return nil
			}
			results[i] = r.runOne(run, outDir, man)
			return nil
		})
	}
	_ = g.Wait()

	if err := man.Save(); err != nil {
		return results, fmt.Errorf("save manifest: %w", err)
	}
	return results, ctx.Err()
}

func (r *Runner) runOne(run discover.Run, outDir string, man *manifest.Manifest) Result {
	res := Result{Run: run, Output: run.OutputName()}
	log := r.log.With().Str("run", run.Name).Logger()

	sources, err := manifest.Fingerprint(run.Sources)
	if err != nil {
		res.Err = err
		return res
	}
	outputs := []string{run.OutputName()}
	if r.cfg.ChromeTrace {
		outputs = append(outputs, run.TraceName())
	}
	if r.cfg.Incremental && man.Unchanged(run.Name, sources, outputs...) {
		log.Debug().Msg("input unchanged, skipping")
		res.Skipped = true
		return res
	}

	log.Info().Int("sources", len(run.Sources)).Msg("processing")

	rep, err := r.proc.Process(run)
	res.Stats = rep.Stats
	if err != nil {
		res.Err = err
		return res
	}

	err = writeFileAtomic(filepath.Join(outDir, run.OutputName()), func(w io.Writer) error {
		return output.WriteCSV(w, rep.Rows)
	})
	if err != nil {
		res.Err = fmt.Errorf("write report: %w", err)
		return res
	}

	if r.cfg.ChromeTrace {
		err = writeFileAtomic(filepath.Join(outDir, run.TraceName()), func(w io.Writer) error {
			return output.WriteChromeTrace(w, rep.Calls)
		})
		if err != nil {
			res.Err = fmt.Errorf("write trace: %w", err)
			return res
		}
	}

	man.Set(run.Name, manifest.Entry{Sources: sources, Outputs: outputs})
	return res
}

// writeFileAtomic writes through a hidden temp file in the same directory
// and renames it into place, so a report either exists whole or not at all.
func writeFileAtomic(path string, fn func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = fn(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
