// Package manifest records which inputs produced which reports so unchanged
// runs can be skipped on the next invocation.
package manifest

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileName is the manifest's name inside the output directory.
const FileName = ".sortlogs-manifest.json"

// Source fingerprints one input file.
type Source struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Entry describes the last successful processing of one run.
type Entry struct {
	Sources []Source `json:"sources"`
	Outputs []string `json:"outputs"`
}

type manifestData struct {
	Runs map[string]Entry `json:"runs"`
}

// Manifest persists run entries in the output directory.
type Manifest struct {
	mu   sync.RWMutex
	path string
	data manifestData
}

// Load reads the manifest in dir, starting empty if it is missing. A manifest
// that cannot be decoded is logged and ignored, so every run is reprocessed.
func Load(dir string, log zerolog.Logger) (*Manifest, error) {
	m := &Manifest{
		path: filepath.Join(dir, FileName),
		data: manifestData{Runs: make(map[string]Entry)},
	}

	raw, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(raw, &m.data); err != nil {
			log.Warn().Err(err).Str("path", m.path).Msg("ignoring unreadable manifest")
			m.data = manifestData{}
		}
	}
	if m.data.Runs == nil {
		m.data.Runs = make(map[string]Entry)
	}
	return m, nil
}

// Fingerprint stats the given files.
func Fingerprint(paths []string) ([]Source, error) {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		out = append(out, Source{Path: p, Size: info.Size(), ModTime: info.ModTime().UTC()})
	}
	return out, nil
}

// Get returns the recorded entry for run.
func (m *Manifest) Get(run string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.data.Runs[run]
	return e, ok
}

// Set records the entry for run.
func (m *Manifest) Set(run string, e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.Runs[run] = e
}

// Unchanged reports whether run was last processed from exactly sources and
// every one of outputs still exists next to the manifest.
func (m *Manifest) Unchanged(run string, sources []Source, outputs ...string) bool {
	e, ok := m.Get(run)
	if !ok || len(e.Sources) != len(sources) {
		return false
	}
	for i, s := range sources {
		prev := e.Sources[i]
		if prev.Path != s.Path || prev.Size != s.Size || !prev.ModTime.Equal(s.ModTime) {
			return false
		}
	}
	dir := filepath.Dir(m.path)
	for _, name := range outputs {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
