package cmd

import (
	"fmt"

	"github.com/OpenFogStack/enoki/internal/logger"
	"github.com/OpenFogStack/enoki/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve <output-dir>",
	Short: "Browse finished reports over HTTP",
	Long: `Serve the reports in an output directory as JSON.

Endpoints:
  GET /healthz
  GET /api/reports
  GET /api/reports/<name>
  GET /api/reports/<name>/summary`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("serve_addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	addr := viper.GetString("serve_addr")
	log := logger.WithComponent("serve")
	log.Info().Str("addr", addr).Str("dir", args[0]).Msg("serving reports")

	if err := server.New(args[0], addr).Start(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
