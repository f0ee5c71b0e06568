package dag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kadai-ai/kadai/common/logger"
)

// Execute runs every node respecting Deps (spec §4.1). It always returns a
// RunContext, even when nodes failed — callers inspect rc.Events() for
// per-node outcomes; the engine never re-raises a node error to the caller.
func (d *Dag) Execute(ctx context.Context, rc *RunContext) *RunContext {
	rc.StartedAt = time.Now()
	defer func() { rc.FinishedAt = time.Now() }()

	order, err := d.topoOrder()
	if err != nil {
		// dag.New's validation should have already caught this;
		// this is a defensive fallback so Execute never panics on a Dag
		// built some other way.
		rc.appendEvent(NodeEvent{NodeName: d.Name, Status: StatusFailed, StartedAt: rc.StartedAt, FinishedAt: time.Now(), Err: err})
		return rc
	}

	var mu sync.Mutex
	status := make(map[string]NodeStatus, len(order))
	for _, name := range order {
		status[name] = StatusPending
	}

	var wg sync.WaitGroup
	scheduled := make(map[string]bool, len(order))

	var schedule func()
	schedule = func() {
		mu.Lock()
		defer mu.Unlock()

		progressed := true
		for progressed {
			progressed = false
			for _, name := range order {
				if scheduled[name] {
					continue
				}
				n := d.nodes[name]
				ready, blocked := depsSettled(n.Deps, status)
				if !ready {
					continue
				}
				scheduled[name] = true
				progressed = true

				if blocked {
					status[name] = StatusSkipped
					rc.appendEvent(NodeEvent{NodeName: name, Status: StatusSkipped, StartedAt: time.Now(), FinishedAt: time.Now()})
					continue
				}

				select {
				case <-ctx.Done():
					status[name] = StatusSkipped
					rc.appendEvent(NodeEvent{NodeName: name, Status: StatusSkipped, StartedAt: time.Now(), FinishedAt: time.Now(), Err: ctx.Err()})
					continue
				default:
				}

				wg.Add(1)
				go func(n DagNode) {
					defer wg.Done()
					st := d.runNode(ctx, rc, n)
					mu.Lock()
					status[n.Name] = st
					mu.Unlock()
					schedule()
				}(n)
			}
		}
	}

	schedule()
	wg.Wait()

	return rc
}

// depsSettled reports whether all of deps have a terminal status, and
// whether any of them settled as anything other than StatusOK (in which
// case the dependent must be skipped rather than run).
func depsSettled(deps []string, status map[string]NodeStatus) (ready bool, blocked bool) {
	ready = true
	for _, dep := range deps {
		s := status[dep]
		switch s {
		case StatusOK:
			continue
		case StatusFailed, StatusSkipped:
			blocked = true
		default:
			ready = false
		}
	}
	return ready, blocked
}

func (d *Dag) runNode(ctx context.Context, rc *RunContext, n DagNode) NodeStatus {
	nodeCtx := logger.WithLogFields(ctx, logger.LogFields{NodeName: logger.Ptr(n.Name), RunID: logger.Ptr(rc.RunID)})

	policy := RetryPolicy{MaxAttempts: 1}
	if n.RetryPolicy != nil {
		policy = *n.RetryPolicy
		if policy.MaxAttempts < 1 {
			policy.MaxAttempts = 1
		}
	}

	var lastErr error
	start := time.Now()
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		rc.appendEvent(NodeEvent{NodeName: n.Name, Status: StatusRunning, StartedAt: time.Now()})

		runCtx := nodeCtx
		cancel := func() {}
		if n.Timeout > 0 {
			runCtx, cancel = context.WithTimeout(nodeCtx, n.Timeout)
		}

		err := n.Func(runCtx, rc)
		cancel()

		if err == nil {
			rc.appendEvent(NodeEvent{NodeName: n.Name, Status: StatusOK, StartedAt: start, FinishedAt: time.Now()})
			return StatusOK
		}

		lastErr = err
		slog.WarnContext(nodeCtx, "node attempt failed", "node", n.Name, "attempt", attempt, "error", err)

		if attempt < policy.MaxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = policy.MaxAttempts // stop retrying
			case <-time.After(policy.backoff(attempt)):
			}
		}
	}

	rc.appendEvent(NodeEvent{NodeName: n.Name, Status: StatusFailed, StartedAt: start, FinishedAt: time.Now(), Err: fmt.Errorf("node %q: %w", n.Name, lastErr)})
	return StatusFailed
}
