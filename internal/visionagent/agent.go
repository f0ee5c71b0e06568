// Package visionagent implements the Vision-Action Agent (spec §4.5): a
// bounded perception→reasoning→action loop that alternates screenshot →
// vision-LLM reasoning → browser action until the task reports completion
// or the step budget exhausts. Directly grounded on the teacher's
// internal/brain/explore_agent.go Explore method: the iteration budget,
// doom-loop detection over a sliding window of recent actions, and the
// forced-synthesis fallback are adapted from that file's tool-call loop
// into VisionAction-based turns.
package visionagent

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/errs"
)

const (
	defaultMaxSteps      = 20
	doomLoopWindow       = 3
	defaultActionTimeout = 15 * time.Second
)

type Status string

const (
	StatusOK         Status = "ok"
	StatusIncomplete Status = "incomplete"
	StatusFailed     Status = "failed"
)

// StepRecord preserves one iteration's screenshot, the action chosen for
// it, and whether a post-action verification was run (spec §4.5: "the full
// action history, all screenshots ... and every rationale are preserved").
type StepRecord struct {
	Screenshot []byte
	Action     Action
	Verified   *bool // nil when verification was not attempted for this step
	Err        error
}

type Result struct {
	Status Status
	Answer string
	Steps  []StepRecord
	Reason string // set on StatusFailed, e.g. "cancelled", "navigation_blocked"
}

// Config controls one Agent run.
type Config struct {
	MaxSteps    int  // default 20 (spec §4.5); 0 is a valid boundary value, not "unset"
	MaxStepsSet bool // distinguishes "MaxSteps: 0" from a zero-value Config
	StartingURL string
	Verify      bool // post-action verification (spec §9 open question: default per skill)
}

type Agent struct {
	Vision llm.VisionClient
	Driver browser.Driver
}

func New(vision llm.VisionClient, driver browser.Driver) *Agent {
	return &Agent{Vision: vision, Driver: driver}
}

// Run executes the bounded loop described in spec §4.5.
func (a *Agent) Run(ctx context.Context, task string, cfg Config) (Result, error) {
	maxSteps := defaultMaxSteps
	if cfg.MaxStepsSet || cfg.MaxSteps != 0 {
		maxSteps = cfg.MaxSteps
	}

	if maxSteps == 0 {
		// spec §8 boundary: "Vision-Action loop at max_steps=0 returns
		// incomplete without calling the LLM."
		return Result{Status: StatusIncomplete}, nil
	}

	if cfg.StartingURL != "" {
		if err := validateURL(cfg.StartingURL); err != nil {
			return Result{Status: StatusFailed, Reason: "navigation_blocked"}, err
		}
		if err := a.Driver.Navigate(ctx, cfg.StartingURL, browser.WaitDOMContentLoaded); err != nil {
			return Result{Status: StatusFailed, Reason: "navigation_blocked"}, fmt.Errorf("starting navigation: %w", errs.Unavailable)
		}
	}

	var (
		result  Result
		history []Action
		recent  []string
	)

	for step := 1; step <= maxSteps; step++ {
		select {
		case <-ctx.Done():
			result.Status = StatusFailed
			result.Reason = "cancelled"
			return result, fmt.Errorf("vision-action run: %w", errs.Cancelled)
		default:
		}

		shot, err := a.Driver.Screenshot(ctx, "", false)
		if err != nil {
			result.Steps = append(result.Steps, StepRecord{Err: err})
			result.Status = StatusFailed
			result.Reason = "navigation_blocked"
			return result, fmt.Errorf("screenshot: %w", errs.Unavailable)
		}

		doomLooping := len(recent) >= doomLoopWindow && allIdentical(recent[len(recent)-doomLoopWindow:])

		if doomLooping {
			answer, qaErr := a.finalQA(ctx, task, shot)
			result.Status = StatusOK
			result.Answer = answer
			if qaErr != nil {
				slog.WarnContext(ctx, "vision-action final qa failed", "error", qaErr)
			}
			return result, nil
		}

		action, perr := a.reason(ctx, task, shot, history)
		if perr != nil {
			result.Steps = append(result.Steps, StepRecord{Screenshot: shot, Err: perr})
			continue // step failure recorded; loop continues (spec §4.5 step 3)
		}

		if action.Kind == KindComplete {
			answer, qaErr := a.finalQA(ctx, task, shot)
			result.Status = StatusOK
			result.Answer = answer
			result.Steps = append(result.Steps, StepRecord{Screenshot: shot, Action: action})
			if qaErr != nil {
				slog.WarnContext(ctx, "vision-action final qa failed", "error", qaErr)
			}
			return result, nil
		}

		history = append(history, action)
		recent = append(recent, action.normalize())

		execErr := a.execute(ctx, action)
		rec := StepRecord{Screenshot: shot, Action: action, Err: execErr}
		if cfg.Verify && execErr == nil {
			ok := a.verify(ctx, action)
			rec.Verified = &ok
		}
		result.Steps = append(result.Steps, rec)
		// Browser exceptions are recorded and the loop continues, self-correcting
		// on the next iteration (spec §4.5 step 5) — they are not fatal.
	}

	result.Status = StatusIncomplete
	return result, nil
}

func (a *Agent) reason(ctx context.Context, task string, screenshot []byte, history []Action) (Action, error) {
	prompt := buildReasoningPrompt(task, history)

	resp, err := a.Vision.Analyze(ctx, llm.VisionRequest{ImagePNG: screenshot, Prompt: prompt})
	if err != nil {
		return Action{}, fmt.Errorf("vision analyze: %w", errs.Unavailable)
	}

	action, err := parseAction(resp)
	if err == nil {
		return action, nil
	}

	// Strict JSON retry-with-clarifier (spec §9, §4.5 step 3): one retry only.
	resp2, err2 := a.Vision.Analyze(ctx, llm.VisionRequest{ImagePNG: screenshot, Prompt: prompt + "\n\n" + strictJSONClarifier})
	if err2 != nil {
		return Action{}, fmt.Errorf("vision analyze retry: %w", errs.Unavailable)
	}
	action, err = parseAction(resp2)
	if err != nil {
		return Action{}, fmt.Errorf("vision action: %w", errs.BadResponse)
	}
	return action, nil
}

func (a *Agent) finalQA(ctx context.Context, task string, screenshot []byte) (string, error) {
	prompt := fmt.Sprintf("Task: %s\n\nAnswer the user's question in one sentence, or respond NO_ANSWER.", task)
	resp, err := a.Vision.Analyze(ctx, llm.VisionRequest{ImagePNG: screenshot, Prompt: prompt})
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(resp)
	if answer == "NO_ANSWER" {
		return "", nil
	}
	return answer, nil
}

// execute runs an action on the browser. On exception it records the
// failure and the caller continues the loop rather than aborting (spec
// §4.5 step 5).
func (a *Agent) execute(ctx context.Context, action Action) error {
	execCtx, cancel := context.WithTimeout(ctx, defaultActionTimeout)
	defer cancel()

	switch action.Kind {
	case KindClick:
		return a.Driver.Click(execCtx, action.TargetDescription, defaultActionTimeout)
	case KindType:
		return a.Driver.Fill(execCtx, action.TargetDescription, action.Text, defaultActionTimeout)
	case KindScroll:
		_, err := a.Driver.Evaluate(execCtx, "window.scrollBy(0, 400)")
		return err
	case KindNavigate:
		if verr := validateURL(action.URL); verr != nil {
			return verr
		}
		return a.Driver.Navigate(execCtx, action.URL, browser.WaitDOMContentLoaded)
	case KindWait:
		d := time.Duration(action.DurationMS) * time.Millisecond
		select {
		case <-time.After(d):
			return nil
		case <-execCtx.Done():
			return execCtx.Err()
		}
	default:
		return fmt.Errorf("vision-action: unknown action kind %q: %w", action.Kind, errs.Internal)
	}
}

// verify re-screenshots and asks the vision LLM whether the action had its
// intended effect. A verification failure does not alter control flow —
// it is recorded on the step and the loop proceeds regardless (spec §4.5:
// "optionally re-screenshot and ask the vision LLM to verify").
func (a *Agent) verify(ctx context.Context, action Action) bool {
	shot, err := a.Driver.Screenshot(ctx, "", false)
	if err != nil {
		return false
	}
	prompt := fmt.Sprintf(
		"An automated agent just performed this action: %s (%s). "+
			"Looking at the current page, did the action appear to succeed? Respond with only YES or NO.",
		action.Kind, action.Rationale)
	resp, err := a.Vision.Analyze(ctx, llm.VisionRequest{ImagePNG: shot, Prompt: prompt})
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(resp), "YES")
}

// validateURL enforces spec §4.5's safety bounds: http/https only, no
// file:// or about: navigation.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("vision-action: invalid url: %w", errs.Refused)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("vision-action: refusing navigation to scheme %q: %w", u.Scheme, errs.Refused)
	}
}

func allIdentical(keys []string) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[0] {
			return false
		}
	}
	return true
}

func buildReasoningPrompt(task string, history []Action) string {
	var b strings.Builder
	b.WriteString("You are controlling a web browser to accomplish a task.\n")
	fmt.Fprintf(&b, "Task: %s\n\n", task)

	if len(history) > 0 {
		b.WriteString("Actions taken so far (rationale only):\n")
		for i, act := range history {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, act.Kind, act.Rationale)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Respond with a single JSON object naming exactly one action: ` +
		`{"kind": "click|type|scroll|navigate|wait|complete", "target_description": "...", ` +
		`"text": "...", "url": "...", "duration_ms": 0, "rationale": "..."}`)
	return b.String()
}
