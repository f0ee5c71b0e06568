package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/spf13/cobra"
)

func newRepoCmd() *cobra.Command {
	var showEvals bool

	cmd := &cobra.Command{
		Use:   "repo <question>",
		Short: "Ask a question answered from recorded repo-insight memory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			question := strings.Join(args, " ")
			result, err := a.dispatch.Dispatch(cmd.Context(), dispatcher.TaskContext{
				Utterance: question,
				Source:    dispatcher.SourceText,
			})
			if err != nil {
				return err
			}

			printResult(result)

			if showEvals {
				records, _ := json.MarshalIndent(a.dispatch.EvalLog(), "", "  ")
				fmt.Println(string(records))
			}

			return resultToErr(result)
		},
	}

	cmd.Flags().BoolVar(&showEvals, "evals", false, "print the router/ambiguity LLM eval log after answering")
	return cmd
}
