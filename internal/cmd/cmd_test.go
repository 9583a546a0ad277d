package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRequiresTwoArgs(t *testing.T) {
	for _, args := range [][]string{{}, {"in"}, {"in", "out", "extra"}} {
		rootCmd.SetArgs(args)
		assert.Error(t, rootCmd.Execute(), "args %v", args)
	}
}

func TestRootSortsDirectory(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "results")

	lines := "function=f handler=h stream=stdout 2024-01-10T10:00:00Z BEFAAS;2024-01-10T10:00:00Z;f;x1;x1;c1;start\n" +
		"function=f handler=h stream=stdout 2024-01-10T10:00:00Z BEFAAS;2024-01-10T10:00:00.1Z;f;x1;x1;c1;end\n"
	require.NoError(t, os.WriteFile(filepath.Join(in, "edge-1.txt"), []byte(lines), 0o644))

	rootCmd.SetArgs([]string{in, out, "--log-level", "error", "--output", "json"})
	require.NoError(t, rootCmd.Execute())

	raw, err := os.ReadFile(filepath.Join(out, "edge-1-sorted.csv"))
	require.NoError(t, err)
	assert.Equal(t, "function,xcontext,xexecution,xpair,time_type,time\n"+
		"f,c1,x1,x1,total,0.1\n"+
		"f,c1,x1,x1,proc,0.1\n", string(raw))
}

func TestRootMissingInputFails(t *testing.T) {
	rootCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing"), t.TempDir(), "--log-level", "error"})
	assert.Error(t, rootCmd.Execute())
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "client_function", configKey("client-function"))
	assert.Equal(t, "workers", configKey("workers"))
}

func TestServeRequiresOneArg(t *testing.T) {
	for _, args := range [][]string{{"serve"}, {"serve", "a", "b"}} {
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		require.Error(t, err, "args %v", args)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	}
}

func TestServeBadAddress(t *testing.T) {
	rootCmd.SetArgs([]string{"serve", t.TempDir(), "--addr", "127.0.0.1:-1", "--log-level", "error"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve:")
	assert.Equal(t, "127.0.0.1:-1", viper.GetString("serve_addr"))
}
