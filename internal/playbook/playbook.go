// Package playbook implements the Playbook Runner (spec §4.3): a declarative
// ordered step interpreter for deterministic browser sequences, run without
// LLM involvement. Grounded on the teacher's internal/worker sequential
// step-processing shape (evaluate → execute → on_failure branch); retry
// waits a fixed retryBackoff (500ms) between attempts.
package playbook

import (
	"context"
	"fmt"
	"time"

	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/errs"
)

type Action string

const (
	ActionNavigate   Action = "navigate"
	ActionClick      Action = "click"
	ActionFill       Action = "fill"
	ActionWait       Action = "wait"
	ActionEvaluate   Action = "evaluate"
	ActionScreenshot Action = "screenshot"
	ActionPressKey   Action = "press_key"
	ActionSelect     Action = "select"
)

type OnFailure struct {
	Mode  string // "abort" | "continue" | "retry"
	Retry int    // only meaningful when Mode == "retry"
}

func Abort() OnFailure           { return OnFailure{Mode: "abort"} }
func Continue() OnFailure        { return OnFailure{Mode: "continue"} }
func Retry(n int) OnFailure      { return OnFailure{Mode: "retry", Retry: n} }
func (f OnFailure) isRetry() bool { return f.Mode == "retry" }

// Guard evaluates whether a step should run at all; a false guard skips the
// step without marking it failed (spec §4.3).
type Guard func(params map[string]any) bool

// Predicate is a pre/postcondition check (itself a step list, since
// preconditions are allowed to navigate per spec §4.3).
type Predicate = Step

type Step struct {
	Name      string
	Action    Action
	Params    map[string]any
	WaitFor   string // optional selector to await after the action
	Guard     Guard
	OnFailure OnFailure
}

type Playbook struct {
	Name           string
	Steps          []Step
	Preconditions  []Step
	Postconditions []Step
}

type StepResult struct {
	Name     string
	Skipped  bool
	Failed   bool
	Err      error
	Artifact any
}

// Report is the Playbook Runner's final output (spec §4.3: "a final report
// lists each step's status and any captured artifacts").
type Report struct {
	Steps     []StepResult
	Succeeded bool
}

const defaultWaitForTimeout = 30 * time.Second
const retryBackoff = 500 * time.Millisecond

// Runner interprets Playbooks against a browser.Driver.
type Runner struct {
	Driver browser.Driver
}

func New(driver browser.Driver) *Runner {
	return &Runner{Driver: driver}
}

// Run executes pb's preconditions, steps, and postconditions in order
// (spec §4.3). A postcondition failure marks the playbook failed even if
// every step succeeded.
func (r *Runner) Run(ctx context.Context, pb Playbook) (Report, error) {
	var report Report

	for _, pre := range pb.Preconditions {
		res := r.runStep(ctx, pre)
		report.Steps = append(report.Steps, res)
		if res.Failed {
			return report, fmt.Errorf("playbook %q: precondition %q failed: %w", pb.Name, pre.Name, errs.BadResponse)
		}
	}

	allOK := true
	for _, step := range pb.Steps {
		select {
		case <-ctx.Done():
			report.Steps = append(report.Steps, StepResult{Name: step.Name, Failed: true, Err: ctx.Err()})
			report.Succeeded = false
			return report, fmt.Errorf("playbook %q: cancelled: %w", pb.Name, errs.Cancelled)
		default:
		}

		res := r.runStep(ctx, step)
		report.Steps = append(report.Steps, res)
		if res.Failed && !res.Skipped {
			allOK = false
			if step.OnFailure.Mode == "abort" || step.OnFailure.Mode == "" {
				report.Succeeded = false
				return report, nil
			}
		}
	}

	for _, post := range pb.Postconditions {
		res := r.runStep(ctx, post)
		report.Steps = append(report.Steps, res)
		if res.Failed {
			allOK = false
		}
	}

	report.Succeeded = allOK
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) StepResult {
	if step.Guard != nil && !step.Guard(step.Params) {
		return StepResult{Name: step.Name, Skipped: true}
	}

	attempts := 1
	if step.OnFailure.isRetry() {
		attempts = step.OnFailure.Retry + 1
	}

	var lastErr error
	var artifact any
	for attempt := 1; attempt <= attempts; attempt++ {
		artifact, lastErr = r.execute(ctx, step)
		if lastErr == nil {
			break
		}
		if attempt < attempts {
			time.Sleep(retryBackoff)
		}
	}

	if lastErr != nil {
		if step.OnFailure.Mode == "continue" {
			return StepResult{Name: step.Name, Failed: true, Err: lastErr}
		}
		return StepResult{Name: step.Name, Failed: true, Err: lastErr}
	}

	return StepResult{Name: step.Name, Artifact: artifact}
}

func (r *Runner) execute(ctx context.Context, step Step) (any, error) {
	var artifact any

	switch step.Action {
	case ActionNavigate:
		url, _ := step.Params["url"].(string)
		waitUntil := browser.WaitDOMContentLoaded
		if wu, ok := step.Params["wait_until"].(string); ok && wu != "" {
			waitUntil = browser.WaitUntil(wu)
		}
		if err := r.Driver.Navigate(ctx, url, waitUntil); err != nil {
			return nil, err
		}
	case ActionClick:
		sel, _ := step.Params["selector"].(string)
		if err := r.Driver.Click(ctx, sel, defaultWaitForTimeout); err != nil {
			return nil, err
		}
	case ActionFill:
		sel, _ := step.Params["selector"].(string)
		text, _ := step.Params["text"].(string)
		if err := r.Driver.Fill(ctx, sel, text, defaultWaitForTimeout); err != nil {
			return nil, err
		}
	case ActionWait:
		if sel, ok := step.Params["selector"].(string); ok && sel != "" {
			if err := r.Driver.WaitForSelector(ctx, sel, defaultWaitForTimeout, "visible"); err != nil {
				return nil, err
			}
		} else if ms, ok := step.Params["duration_ms"].(int); ok {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	case ActionEvaluate:
		script, _ := step.Params["script"].(string)
		result, err := r.Driver.Evaluate(ctx, script)
		if err != nil {
			return nil, err
		}
		artifact = result
	case ActionScreenshot:
		path, _ := step.Params["path"].(string)
		fullPage, _ := step.Params["full_page"].(bool)
		bytes, err := r.Driver.Screenshot(ctx, path, fullPage)
		if err != nil {
			return nil, err
		}
		artifact = bytes
	case ActionPressKey:
		key, _ := step.Params["key"].(string)
		if err := r.Driver.PressKey(ctx, key); err != nil {
			return nil, err
		}
	case ActionSelect:
		sel, _ := step.Params["selector"].(string)
		value, _ := step.Params["value"].(string)
		if err := r.Driver.Select(ctx, sel, value); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("playbook: unknown action %q: %w", step.Action, errs.Internal)
	}

	if step.WaitFor != "" {
		if err := r.Driver.WaitForSelector(ctx, step.WaitFor, defaultWaitForTimeout, "visible"); err != nil {
			return artifact, err
		}
	}

	return artifact, nil
}
