// Package fake is a recording browser.Driver test double, grounded on the
// teacher's mock-collaborator test doubles for its collaborator packages:
// every call is recorded so tests can assert on the sequence of actions a
// Playbook or Vision-Action run issued.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kadai-ai/kadai/internal/browser"
)

type Call struct {
	Method   string
	Selector string
	Text     string
	URL      string
}

// Driver is a scriptable fake: each method returns its configured *Err
// field (the same error on every call, nil by default) and, where it has
// one, its *Result field.
type Driver struct {
	mu    sync.Mutex
	Calls []Call

	NavigateErr        error
	ClickErr           error
	FillErr            error
	GetTextResult      string
	GetTextErr         error
	WaitForSelectorErr error
	EvaluateResult     any
	EvaluateErr        error
	ScreenshotResult   []byte
	ScreenshotErr      error
	PressKeyErr        error
	SelectErr          error

	Closed bool
}

func New() *Driver {
	return &Driver{ScreenshotResult: []byte("fake-png")}
}

func (d *Driver) record(c Call) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, c)
}

func (d *Driver) Navigate(_ context.Context, url string, _ browser.WaitUntil) error {
	d.record(Call{Method: "navigate", URL: url})
	return d.NavigateErr
}

func (d *Driver) Click(_ context.Context, selector string, _ time.Duration) error {
	d.record(Call{Method: "click", Selector: selector})
	return d.ClickErr
}

func (d *Driver) Fill(_ context.Context, selector, text string, _ time.Duration) error {
	d.record(Call{Method: "fill", Selector: selector, Text: text})
	return d.FillErr
}

func (d *Driver) GetText(_ context.Context, selector string, _ time.Duration) (string, error) {
	d.record(Call{Method: "get_text", Selector: selector})
	return d.GetTextResult, d.GetTextErr
}

func (d *Driver) WaitForSelector(_ context.Context, selector string, _ time.Duration, _ string) error {
	d.record(Call{Method: "wait_for_selector", Selector: selector})
	return d.WaitForSelectorErr
}

func (d *Driver) Evaluate(_ context.Context, script string) (any, error) {
	d.record(Call{Method: "evaluate", Text: script})
	return d.EvaluateResult, d.EvaluateErr
}

func (d *Driver) Screenshot(_ context.Context, path string, _ bool) ([]byte, error) {
	d.record(Call{Method: "screenshot", Text: path})
	return d.ScreenshotResult, d.ScreenshotErr
}

func (d *Driver) PressKey(_ context.Context, key string) error {
	d.record(Call{Method: "press_key", Text: key})
	return d.PressKeyErr
}

func (d *Driver) Select(_ context.Context, selector, value string) error {
	d.record(Call{Method: "select", Selector: selector, Text: value})
	return d.SelectErr
}

func (d *Driver) Close(_ context.Context) error {
	d.Closed = true
	return nil
}

// Factory returns a browser.Factory that always hands back driver,
// regardless of Options — useful when a test wants to inspect the same
// fake instance a skill call used.
func Factory(driver *Driver) browser.Factory {
	return func(_ context.Context, _ browser.Options) (browser.Driver, error) {
		if driver == nil {
			return nil, fmt.Errorf("fake: nil driver")
		}
		return driver, nil
	}
}
