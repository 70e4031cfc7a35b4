package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oriumgames/bevi"
)

func newRunCmd() *cobra.Command {
	var ticks int
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo schedule for a bounded number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := buildDemoApp()

			// An explicit flag wins; otherwise fall back to the level the
			// app loaded from BEVI_LOG_LEVEL / bevi.yaml.
			effectiveLevel := logLevel
			if !cmd.Flags().Changed("log-level") {
				effectiveLevel = a.Config().LogLevel
			}
			level, err := logrus.ParseLevel(effectiveLevel)
			if err != nil {
				return fmt.Errorf("log-level: %w", err)
			}
			log := logrus.New()
			log.SetLevel(level)

			a = a.WithDiagnostics(bevi.NewLogrusDiagnostics(log))

			ctx := cmd.Context()
			if err := a.Startup(ctx); err != nil {
				return fmt.Errorf("startup: %w", err)
			}
			for i := 0; i < ticks; i++ {
				if err := a.Tick(ctx); err != nil {
					return fmt.Errorf("tick %d: %w", i, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 10, "number of Update ticks to run")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level for system diagnostics (defaults to the loaded config's log_level when unset)")
	return cmd
}
