package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	output   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "plancalc",
		Short: "Calorie and macro target calculator",
		Long: `Computes BMR, TDEE, goal-adjusted calories and a macro split from body metrics.

Metrics come from flags or from a YAML plan file (--file) holding profile,
overrides and meal shares; flags win over the file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			initLogger(cmd.ErrOrStderr(), opts.logLevel)
			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			}
			return fmt.Errorf("unknown output format %q: use text, json or yaml", opts.output)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "output format: text, json or yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newTargetsCmd(opts),
		newCustomCmd(opts),
		newMealsCmd(opts),
		newMCPCmd(),
	)
	return cmd
}

// initLogger sends zerolog output to w. Stdout stays reserved for results
// (and for the MCP protocol in `plancalc mcp`).
func initLogger(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}
