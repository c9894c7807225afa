package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pos-backend/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "pos-backend",
	Short: "POS backend - estimates, orders, reports and customer messaging",
	Long: `pos-backend serves the point-of-sale HTTP API: estimates that can be
converted into orders, direct sales, sales reports, WhatsApp/SMS delivery
through Fast2SMS and live change notifications over a websocket.

Running the binary without a subcommand starts the server.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
	rootCmd.Flags().BoolVar(&serveOpts.memory, "memory", false, "Keep data in memory instead of MongoDB")
}
