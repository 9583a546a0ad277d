// Package discover finds the captures to process in an input directory.
package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNameCollision is returned when two inputs would write the same report.
var ErrNameCollision = errors.New("inputs share a report name")

// Run is one distributed-run capture. A plain file is a run with a single
// source; a subdirectory is a run whose files are merged before sorting.
type Run struct {
	Name    string   // output stem
	Entry   string   // file or directory name in the input directory
	Sources []string // absolute paths, lexically sorted
}

// OutputName is the report file name for the run.
func (r Run) OutputName() string {
	return r.Name + "-sorted.csv"
}

// TraceName is the Chrome trace file name for the run.
func (r Run) TraceName() string {
	return r.Name + "-trace.json"
}

// Find lists the runs in dir. include is a doublestar pattern matched
// against top-level file names and against paths inside subdirectories.
// Hidden entries are ignored. Runs are returned sorted by name; two entries
// mapping to the same name (a.log and a.txt) are an error.
func Find(dir, include string) ([]Run, error) {
	if include == "" {
		include = "*"
	}
	if !doublestar.ValidatePattern(include) {
		return nil, fmt.Errorf("invalid include pattern %q", include)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	var runs []Run
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(abs, name)

		if e.IsDir() {
			sources, err := expandGlob(path, include)
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", path, err)
			}
			if len(sources) > 0 {
				runs = append(runs, Run{Name: name, Entry: name + "/", Sources: sources})
			}
			continue
		}

		if !e.Type().IsRegular() {
			continue
		}
		if ok, _ := doublestar.Match(include, name); ok {
			runs = append(runs, Run{Name: stem(name), Entry: name, Sources: []string{path}})
		}
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Name < runs[j].Name })
	for i := 1; i < len(runs); i++ {
		if prev, cur := runs[i-1], runs[i]; prev.Name == cur.Name {
			return nil, fmt.Errorf("%w: %s and %s both map to %s",
				ErrNameCollision, prev.Entry, cur.Entry, cur.OutputName())
		}
	}
	return runs, nil
}

// expandGlob resolves pattern inside root to absolute file paths.
func expandGlob(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), ".") {
			continue
		}
		out = append(out, filepath.Join(root, filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
