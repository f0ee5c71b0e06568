// Package browser declares the browser driver contract the Playbook Runner
// and Vision-Action Agent consume (spec §6). The concrete driver
// implementation is explicitly out of scope (spec §1 Non-goals); only a
// recording fake ships here, under internal/browser/fake, for tests.
package browser

import (
	"context"
	"time"
)

type WaitUntil string

const (
	WaitLoad             WaitUntil = "load"
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// Driver is the external browser collaborator (spec §6).
type Driver interface {
	Navigate(ctx context.Context, url string, waitUntil WaitUntil) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, text string, timeout time.Duration) error
	GetText(ctx context.Context, selector string, timeout time.Duration) (string, error)
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration, state string) error
	Evaluate(ctx context.Context, script string) (any, error)
	Screenshot(ctx context.Context, path string, fullPage bool) ([]byte, error)
	PressKey(ctx context.Context, key string) error
	Select(ctx context.Context, selector, value string) error
	Close(ctx context.Context) error
}

// Options configure how a Driver instance is launched (spec §6: "Must
// support an optional persistent user-data directory for authenticated
// sessions, and a headless toggle").
type Options struct {
	UserDataDir string
	Headless    bool
}

// Factory constructs a fresh Driver per skill call (spec §5: "concurrent
// skills each instantiate their own browser context").
type Factory func(ctx context.Context, opts Options) (Driver, error)
