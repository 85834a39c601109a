package main

import (
	"log/slog"
	"os"
	"strings"

	"timetable-api/logging"

	"github.com/spf13/cobra"
)

var (
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "timetable",
		Short: "Offline timetable validation and generation",
		Long:  "timetable validates entity snapshots and generates conflict-free timetables without running the API server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newValidateCmd(),
		newGenerateCmd(),
	)
	return root
}

func splitFlag(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
