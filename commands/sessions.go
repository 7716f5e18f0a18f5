package commands

import (
	"github.com/spf13/cobra"

	"github.com/lockedin/go-focus-monitor/internal/monitor"
	"github.com/lockedin/go-focus-monitor/internal/presentation/formatter"
)

var (
	sessionsLimit int

	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "Show recorded monitoring sessions",
		RunE:  runSessions,
	}
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 0,
		"Limit result count (0 = unlimited)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	recorder, err := monitor.NewRecorder(cfg.SessionsDir)
	if err != nil {
		return err
	}
	sessions, err := recorder.Sessions()
	if err != nil {
		return err
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}
	return formatter.NewSessionTableFormatter().Format(sessions)
}
