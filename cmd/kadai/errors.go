package main

import "errors"

// usageError and taskFailureError let exitCodeFor distinguish a bad
// invocation from a task that ran but was refused or failed, without
// every subcommand needing to know the exit-code scheme itself.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newUsageError(msg string) error { return usageError{errors.New(msg)} }

type taskFailureError struct{ err error }

func (e taskFailureError) Error() string { return e.err.Error() }
func (e taskFailureError) Unwrap() error { return e.err }

func newTaskFailureError(msg string) error { return taskFailureError{errors.New(msg)} }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func isTaskFailure(err error) bool {
	var t taskFailureError
	return errors.As(err, &t)
}
