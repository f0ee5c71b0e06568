package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/safety"
	"github.com/kadai-ai/kadai/internal/skills"
	"github.com/kadai-ai/kadai/internal/thread"
)

// defaultDeadline bounds one skill invocation (spec §4.4 step 4).
const defaultDeadline = 5 * time.Minute

// defaultConcurrencyLimit is the dispatcher-wide backpressure budget
// (spec §5 "Backpressure").
const defaultConcurrencyLimit = 4

// IDGen mints run/memory ids; shared with internal/memory and
// internal/thread so every subsystem uses the same id scheme
// (common/id.New wraps the teacher's snowflake generator).
type IDGen func() string

// Dispatcher implements the pipeline in spec §4.4: ambiguity check, safety
// gate, intent routing, skill invocation, write-back.
type Dispatcher struct {
	Registry *skills.Registry
	Safety   *safety.Gate
	Router   llm.AgentClient // nil disables the LLM routing/ambiguity fallback
	Memory   memory.Store
	Threads  thread.Store
	Graph    graph.Graph
	IDGen    IDGen
	Evals    *evalRing

	Deadline         time.Duration // default defaultDeadline
	ConcurrencyLimit int           // default defaultConcurrencyLimit

	sem chan struct{}
}

// New constructs a Dispatcher with evals enabled and sane defaults.
func New(registry *skills.Registry, gate *safety.Gate, router llm.AgentClient, mem memory.Store, threads thread.Store, g graph.Graph, idGen IDGen) *Dispatcher {
	return &Dispatcher{
		Registry:         registry,
		Safety:           gate,
		Router:           router,
		Memory:           mem,
		Threads:          threads,
		Graph:            g,
		IDGen:            idGen,
		Evals:            newEvalRing(),
		Deadline:         defaultDeadline,
		ConcurrencyLimit: defaultConcurrencyLimit,
	}
}

func (d *Dispatcher) semaphore() chan struct{} {
	if d.sem == nil {
		limit := d.ConcurrencyLimit
		if limit <= 0 {
			limit = defaultConcurrencyLimit
		}
		d.sem = make(chan struct{}, limit)
	}
	return d.sem
}

// Dispatch runs the full pipeline in spec §4.4 and the state machine in
// its "State machine (per request)" note: received →
// (clarifying↔received, at most once) → safety → routing → executing →
// writing_back → done.
func (d *Dispatcher) Dispatch(ctx context.Context, tc TaskContext) (TaskResult, error) {
	utterance := tc.Utterance

	// clarifying ↔ received, at most one loop. Without a Clarify channel an
	// ambiguous utterance goes to free_form, but only after the safety gate.
	ambiguous := d.isAmbiguous(ctx, utterance)
	if ambiguous && tc.Clarify != nil {
		follow, err := tc.Clarify(ctx, "Could you clarify what you'd like me to do?")
		if err != nil || d.isAmbiguous(ctx, follow) {
			result := d.writeBack(ctx, tc, utterance, TaskResult{
				Status:  StatusClarificationNeeded,
				Summary: "I wasn't able to resolve what you meant.",
			})
			return result, nil
		}
		utterance = follow
	}

	// safety
	if err := d.Safety.Check(utterance); err != nil {
		if errors.Is(err, errs.Refused) {
			result := d.writeBack(ctx, tc, utterance, TaskResult{
				Status:  StatusRefused,
				Summary: "I won't do that without an explicit confirmation.",
			})
			return result, nil
		}
		return TaskResult{}, err
	}

	// routing
	if ambiguous && tc.Clarify == nil {
		return d.runSkill(ctx, skills.FreeForm, tc, utterance)
	}
	name := d.route(ctx, utterance)
	return d.runSkill(ctx, name, tc, utterance)
}

// runSkill is steps 4-6 of spec §4.4: build and execute the chosen
// skill's Dag under a concurrency-limited, deadline-bounded RunContext,
// then write back regardless of outcome.
func (d *Dispatcher) runSkill(ctx context.Context, name skills.Name, tc TaskContext, utterance string) (TaskResult, error) {
	skill, ok := d.Registry.Get(name)
	if !ok {
		skill, ok = d.Registry.Get(skills.FreeForm)
		if !ok {
			return TaskResult{}, fmt.Errorf("dispatcher: no %q skill and no free_form fallback registered: %w", name, errs.Internal)
		}
	}

	sem := d.semaphore()
	select {
	case sem <- struct{}{}:
		defer func() { <-sem }()
	case <-ctx.Done():
		return d.cancelledResult(ctx, tc, utterance), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, d.effectiveDeadline())
	defer cancel()

	inputs := map[string]any{"utterance": utterance}
	for k, v := range tc.Metadata {
		inputs[k] = v
	}

	rc := dag.NewRunContext(d.IDGen(), inputs)

	d2, err := skill.BuildDAG(runCtx, rc)
	if err != nil {
		result := d.writeBack(ctx, tc, utterance, TaskResult{Status: StatusFailed, Summary: fmt.Sprintf("could not build %s: %v", name, err)})
		return result, nil
	}

	d2.Execute(runCtx, rc)

	if ctx.Err() != nil {
		return d.cancelledResult(ctx, tc, utterance), nil
	}

	result := TaskResult{
		Steps:     rc.Events(),
		Artifacts: rc.Artifacts(),
	}
	if s, ok := rc.Output("summary"); ok {
		if text, ok := s.(string); ok {
			result.Summary = text
		}
	}
	if a, ok := rc.Output("answer"); ok {
		if text, ok := a.(string); ok {
			result.Answer = text
		}
	}

	if rc.Failed() {
		result.Status = StatusFailed
		if result.Summary == "" {
			result.Summary = fmt.Sprintf("%s did not complete successfully", name)
		}
	} else {
		result.Status = StatusOK
	}

	return d.writeBack(ctx, tc, utterance, result), nil
}

func (d *Dispatcher) effectiveDeadline() time.Duration {
	if d.Deadline <= 0 {
		return defaultDeadline
	}
	return d.Deadline
}

func (d *Dispatcher) cancelledResult(ctx context.Context, tc TaskContext, utterance string) TaskResult {
	return d.writeBack(ctx, tc, utterance, TaskResult{Status: StatusFailed, Reason: "cancelled"})
}
