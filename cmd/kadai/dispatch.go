package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/spf13/cobra"
)

func newDispatchCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "dispatch <utterance>",
		Short: "Run a single utterance through the task dispatcher",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			utterance := strings.Join(args, " ")
			result, err := a.dispatch.Dispatch(cmd.Context(), dispatcher.TaskContext{
				Utterance: utterance,
				Source:    dispatcher.Source(source),
				Clarify:   stdinClarify,
			})
			if err != nil {
				return err
			}

			printResult(result)
			return resultToErr(result)
		},
	}

	cmd.Flags().StringVar(&source, "source", string(dispatcher.SourceText), "originating channel (text, voice, hotkey, ambient)")
	return cmd
}

// stdinClarify lets a terminal invocation answer one clarifying
// follow-up interactively instead of always falling through to
// free_form.
func stdinClarify(ctx context.Context, question string) (string, error) {
	fmt.Fprintln(os.Stderr, question)
	fmt.Fprint(os.Stderr, "> ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func printResult(result dispatcher.TaskResult) {
	fmt.Println(result.Summary)
	if result.Answer != "" && result.Answer != result.Summary {
		fmt.Println(result.Answer)
	}
}

// resultToErr turns a refused/failed TaskResult into an error so
// exitCodeFor can report exit code 3; a successful or
// clarification-needed result is not itself an error.
func resultToErr(result dispatcher.TaskResult) error {
	switch result.Status {
	case dispatcher.StatusRefused, dispatcher.StatusFailed:
		return newTaskFailureError(result.Summary)
	default:
		return nil
	}
}
