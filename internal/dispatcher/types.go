// Package dispatcher implements the Task Dispatcher (spec §4.4): the
// ambiguity→safety→routing→execution→write-back pipeline that turns a
// TaskContext into a TaskResult, recording every call into memory, the
// thread store, and the knowledge graph. Grounded directly on
// internal/brain.Orchestrator.HandleEngagement's
// claim→plan→validate→execute→release cycle.
package dispatcher

import (
	"context"

	"github.com/kadai-ai/kadai/core/dag"
)

// Source is where a TaskContext originated (spec §4.4 Inputs).
type Source string

const (
	SourceText    Source = "text"
	SourceVoice   Source = "voice"
	SourceHotkey  Source = "hotkey"
	SourceAmbient Source = "ambient"
)

// ClarifyFunc asks a follow-up question back through the same channel the
// request arrived on and returns the user's single follow-up turn (spec
// §9 open question: "clarifications use the same source channel the
// original request arrived on"). A nil ClarifyFunc means the channel
// cannot ask follow-ups; an ambiguous utterance then goes to free_form
// without a follow-up question, once it has passed the safety gate (spec
// §4.4 step 1).
type ClarifyFunc func(ctx context.Context, question string) (string, error)

// TaskContext is the dispatcher's input (spec §4.4, §3).
type TaskContext struct {
	Utterance string
	Source    Source
	Metadata  map[string]any
	Clarify   ClarifyFunc
}

// Status is a TaskResult's terminal outcome (spec §4.4 step 6).
type Status string

const (
	StatusOK                  Status = "ok"
	StatusClarificationNeeded Status = "clarification_needed"
	StatusRefused             Status = "refused"
	StatusFailed              Status = "failed"
)

// TaskResult is the dispatcher's output (spec §4.4 step 6).
type TaskResult struct {
	Status    Status
	Summary   string
	Answer    string
	Artifacts map[string]any
	Steps     []dag.NodeEvent
	ThreadID  string
	Reason    string // set on StatusFailed, e.g. "cancelled"
}
