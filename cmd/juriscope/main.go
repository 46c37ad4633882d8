// Command juriscope operates the ruling pipeline from the shell: intake of
// scraped rulings, analysis batches, integrity checks and the portal's
// general section.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"juriscope/internal/config"
	"juriscope/internal/logging"
)

func main() {
	_ = godotenv.Load(".env")
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	cfg      config.Config
	logLevel string
}

func rootCmd() *cobra.Command {
	opts := &options{cfg: config.Load()}
	cmd := &cobra.Command{
		Use:           "juriscope",
		Short:         "Constitutional court ruling pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.cfg.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.cfg.StoreDriver, "store", opts.cfg.StoreDriver, "Store driver (postgres, memory)")

	cmd.AddCommand(
		intakeCmd(opts),
		ingestCmd(opts),
		verifyCmd(opts),
		generalCmd(opts),
	)
	return cmd
}

func (o *options) logger() *slog.Logger { return logging.New(o.logLevel) }
