package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/matchclient/internal/factory"
	"github.com/mcoot/matchclient/internal/transport"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// A broken .env surfaces later as a bad server URL; a missing one is fine
	_ = LoadEnvFile(".env")
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "matchclient",
		Short: "Client for the matchmaking server",
		Long: `matchclient talks to a matchmaking server over its JSON-over-HTTP API.

Unscoped queries (players, error descriptions) run as one-shot commands.
Everything that needs a registered player runs inside "play", which keeps a
single session for the life of the process.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cfg, cmd.ErrOrStderr())

			tc := transport.DefaultConfig()
			tc.BaseURL = cfg.ServerURL
			tc.Timeout = cfg.Timeout

			a, err := factory.New(factory.Config{Transport: tc, Logger: logger})
			if err != nil {
				return err
			}
			app = a
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: MATCHCLIENT_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout, 0 for none (env: MATCHCLIENT_TIMEOUT)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: MATCHCLIENT_OUTPUT)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newDescribeErrorCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

func newLogger(c *Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newCmdOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// Execute runs the root command
func Execute() {
	if err := run(NewRootCmd()); err != nil {
		os.Exit(1)
	}
}

// run executes cmd and reports a failure through the configured printer
func run(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		newCmdOutput(cmd).PrintError(err)
	}
	return err
}
