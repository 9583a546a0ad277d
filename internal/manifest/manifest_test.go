package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()

	m1, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	m1.Set("run-1", Entry{Outputs: []string{"run-1-sorted.csv"}, Sources: []Source{{Path: "/in/run-1.txt", Size: 42}}})
	require.NoError(t, m1.Save())

	m2, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	e, ok := m2.Get("run-1")
	require.True(t, ok)
	assert.Equal(t, []string{"run-1-sorted.csv"}, e.Outputs)
	assert.Equal(t, int64(42), e.Sources[0].Size)

	_, ok = m2.Get("missing")
	assert.False(t, ok)
}

func TestLoadCorruptStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	var buf bytes.Buffer
	m, err := Load(dir, zerolog.New(&buf))
	require.NoError(t, err)
	_, ok := m.Get("anything")
	assert.False(t, ok)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "ignoring unreadable manifest")

	m.Set("run", Entry{Outputs: []string{"run-sorted.csv"}})
	_, ok = m.Get("run")
	assert.True(t, ok)
}

func TestUnchanged(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	src := filepath.Join(in, "run.txt")
	require.NoError(t, os.WriteFile(src, []byte("line\n"), 0o644))

	fp, err := Fingerprint([]string{src})
	require.NoError(t, err)

	m, err := Load(out, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, m.Unchanged("run", fp, "run-sorted.csv"))

	m.Set("run", Entry{Sources: fp, Outputs: []string{"run-sorted.csv"}})
	assert.False(t, m.Unchanged("run", fp, "run-sorted.csv"), "output file does not exist yet")

	require.NoError(t, os.WriteFile(filepath.Join(out, "run-sorted.csv"), []byte("x"), 0o644))
	assert.True(t, m.Unchanged("run", fp, "run-sorted.csv"))
	assert.False(t, m.Unchanged("run", fp, "run-sorted.csv", "run-trace.json"), "trace never written")

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, later, later))
	fp2, err := Fingerprint([]string{src})
	require.NoError(t, err)
	assert.False(t, m.Unchanged("run", fp2, "run-sorted.csv"))
}

func TestFingerprintMissing(t *testing.T) {
	_, err := Fingerprint([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}
