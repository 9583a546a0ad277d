package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/OpenFogStack/enoki/internal/logger"
	"github.com/OpenFogStack/enoki/internal/output"
	"github.com/OpenFogStack/enoki/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runSort(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.WithComponent("sort")

	proc := pipeline.NewProcessor(pipeline.Options{
		ClientFunction: viper.GetString("client_function"),
		PerfMarker:     viper.GetString("perf_marker"),
		DebugMarker:    viper.GetString("debug_marker"),
	}, log)

	runner := pipeline.NewRunner(proc, pipeline.RunnerConfig{
		Include:     viper.GetString("include"),
		Workers:     viper.GetInt("workers"),
		ChromeTrace: viper.GetBool("chrome_trace"),
		Incremental: viper.GetBool("incremental"),
	}, log)

	results, runErr := runner.Run(ctx, args[0], args[1])

	renderer := newRenderer(viper.GetString("output"))
	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		if err := renderer.Render(res.Summary()); err != nil {
			log.Error().Err(err).Msg("render summary")
		}
	}

	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}

func newRenderer(format string) output.Renderer {
	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONRenderer(os.Stdout)
	default:
		return output.NewTextRenderer(os.Stdout)
	}
}
