package main

import (
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kadai-ai/kadai/internal/frontend"
	"github.com/spf13/cobra"
)

func newAmbientCmd() *cobra.Command {
	var task string
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "ambient",
		Short: "Run a fixed task on a timer until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(task) == "" {
				return newUsageError("--task is required")
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			monitor := &frontend.AmbientMonitor{
				Dispatcher: a.dispatch,
				Task:       task,
				Interval:   every,
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			monitor.Start(ctx)
			<-ctx.Done()
			monitor.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "utterance to re-run on every tick")
	cmd.Flags().DurationVar(&every, "every", time.Hour, "tick interval")
	return cmd
}
