package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "kadai",
		Short:         "Local-first workflow and task-dispatch assistant core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newDispatchCmd(),
		newVoiceCmd(),
		newAmbientCmd(),
		newDailyCmd(),
		newRepoCmd(),
		newServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a top-level command error onto the process exit codes
// spec.md §6 assigns: 0 success, 2 bad usage/arguments, 3 a dispatched
// task itself failed or was refused, 1 any other internal error. Ctrl-C
// (context.Canceled reaching main) exits 130, the POSIX SIGINT
// convention.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case err == context.Canceled:
		return 130
	case isUsageError(err):
		return 2
	case isTaskFailure(err):
		return 3
	default:
		return 1
	}
}
