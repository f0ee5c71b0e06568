// Package errs defines the error taxonomy every subsystem maps its failures
// onto before they reach the dispatcher. Sentinels are matched with
// errors.Is; call sites wrap with %w so the original cause survives.
package errs

import "errors"

var (
	// NotFound means a referenced entity (memory item, thread, graph node,
	// DOM element) does not exist.
	NotFound = errors.New("not found")

	// Timeout means an operation exceeded its deadline.
	Timeout = errors.New("timeout")

	// Unavailable means a collaborator (LLM, browser, ASR/TTS) could not be
	// reached at all.
	Unavailable = errors.New("unavailable")

	// BadResponse means a collaborator replied but its response could not be
	// used (malformed JSON after the full parsing ladder, empty completion).
	BadResponse = errors.New("bad response")

	// Ambiguous means a request could not be routed or resolved without
	// more information from the user.
	Ambiguous = errors.New("ambiguous")

	// Refused means the safety gate rejected a request.
	Refused = errors.New("refused")

	// Cancelled means the caller's context was cancelled or its deadline
	// exceeded before the operation completed.
	Cancelled = errors.New("cancelled")

	// Internal covers everything else: programmer errors, invariant
	// violations, unexpected nil state.
	Internal = errors.New("internal error")
)
