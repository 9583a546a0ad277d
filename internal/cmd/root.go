package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/OpenFogStack/enoki/internal/aggregator"
	"github.com/OpenFogStack/enoki/internal/logger"
	"github.com/OpenFogStack/enoki/internal/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd sorts a directory of captures when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "sortlogs <input-dir> <output-dir>",
	Short: "sortlogs: reconstruct request traces from function logs",
	Long: `sortlogs reads the raw, unordered log captures of a benchmark run, orders the
performance records of every function, database call and load client by
timestamp, and writes one timing report per capture.

For every file in <input-dir> a CSV named <stem>-sorted.csv is written to
<output-dir> with the columns function,xcontext,xexecution,xpair,time_type,time.
Subdirectories of <input-dir> are treated as one capture split over several files.

Examples:
  sortlogs logs/ results/
  sortlogs logs/ results/ --include "*.txt" --workers 4
  sortlogs logs/ results/ --chrome-trace --incremental`,
	Args:              cobra.ExactArgs(2),
	PersistentPreRunE: initLogger,
	RunE:              runSort,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.sortlogs.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-pretty", true, "human-readable logs instead of JSON")

	f := rootCmd.Flags()
	f.StringP("output", "o", "text", "summary format: text, json")
	f.String("client-function", aggregator.DefaultClientFunction, "name of the request-issuing pseudo-function")
	f.String("perf-marker", parser.DefaultPerfMarker, "prefix of performance records")
	f.String("debug-marker", parser.DefaultDebugMarker, "prefix of debug records")
	f.String("include", "*", "glob selecting input files")
	f.IntP("workers", "w", 1, "captures processed concurrently")
	f.Bool("chrome-trace", false, "also write <stem>-trace.json in Chrome trace format")
	f.Bool("incremental", false, "skip captures unchanged since the last run")

	for _, name := range []string{"log-level", "log-pretty"} {
		_ = viper.BindPFlag(configKey(name), pf.Lookup(name))
	}
	for _, name := range []string{"output", "client-function", "perf-marker", "debug-marker", "include", "workers", "chrome-trace", "incremental"} {
		_ = viper.BindPFlag(configKey(name), f.Lookup(name))
	}
}

// configKey maps a flag name to its config file key.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".sortlogs")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SORTLOGS")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func initLogger(_ *cobra.Command, _ []string) error {
	return logger.Init(logger.Config{
		Level:  viper.GetString("log_level"),
		Pretty: viper.GetBool("log_pretty"),
	})
}
