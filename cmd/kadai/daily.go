package main

import (
	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/spf13/cobra"
)

func newDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Run the daily-ops collector and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			result, err := a.dispatch.Dispatch(cmd.Context(), dispatcher.TaskContext{
				Utterance: "daily status",
				Source:    dispatcher.SourceHotkey,
			})
			if err != nil {
				return err
			}

			printResult(result)
			return resultToErr(result)
		},
	}
}
