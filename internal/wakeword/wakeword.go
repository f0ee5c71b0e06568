// Package wakeword declares the wake-word detector contract consumed by
// the Voice Frontend (spec §6). The detector itself is out of scope
// (spec §1 Non-goals); when unavailable, the frontend degrades to
// barge-in mode (spec §4.6).
package wakeword

import "context"

// Detector listens for a trigger phrase.
type Detector interface {
	// ListenOnce blocks until the wake word is heard or timeout elapses,
	// returning false on timeout rather than an error.
	ListenOnce(ctx context.Context, timeout int) (bool, error)

	// ListenContinuous invokes callback once per detection until ctx is
	// cancelled or callback returns an error.
	ListenContinuous(ctx context.Context, callback func(ctx context.Context) error) error
}
