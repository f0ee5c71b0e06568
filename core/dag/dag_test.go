package dag_test

import (
	"context"
	"errors"
	"time"

	"github.com/kadai-ai/kadai/core/dag"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dag", func() {
	It("rejects a cycle at construction", func() {
		_, err := dag.New("cyclic", []dag.DagNode{
			{Name: "a", Deps: []string{"b"}, Func: noop},
			{Name: "b", Deps: []string{"a"}, Func: noop},
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects sibling nodes that write the same key", func() {
		_, err := dag.New("collide", []dag.DagNode{
			{Name: "a", Func: noop, Writes: []string{"x"}},
			{Name: "b", Func: noop, Writes: []string{"x"}},
		})
		Expect(err).To(HaveOccurred())
	})

	It("allows a dependent chain to share a write key", func() {
		_, err := dag.New("chain", []dag.DagNode{
			{Name: "a", Func: noop, Writes: []string{"x"}},
			{Name: "b", Deps: []string{"a"}, Func: noop, Writes: []string{"x"}},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs dependents only after their deps reach ok, and skips them otherwise", func() {
		d, err := dag.New("basic", []dag.DagNode{
			{Name: "a", Func: func(_ context.Context, rc *dag.RunContext) error {
				rc.SetOutput("a", 1)
				return nil
			}, Writes: []string{"a"}},
			{Name: "fails", Func: func(_ context.Context, _ *dag.RunContext) error {
				return errors.New("boom")
			}},
			{Name: "b", Deps: []string{"a"}, Func: func(_ context.Context, rc *dag.RunContext) error {
				v, _ := rc.Output("a")
				rc.SetOutput("b", v)
				return nil
			}, Writes: []string{"b"}},
			{Name: "dependent_on_failure", Deps: []string{"fails"}, Func: noop},
		})
		Expect(err).NotTo(HaveOccurred())

		rc := dag.NewRunContext("run-1", nil)
		rc = d.Execute(context.Background(), rc)

		statuses := map[string]dag.NodeStatus{}
		for _, e := range rc.Events() {
			statuses[e.NodeName] = e.Status
		}
		Expect(statuses["a"]).To(Equal(dag.StatusOK))
		Expect(statuses["b"]).To(Equal(dag.StatusOK))
		Expect(statuses["fails"]).To(Equal(dag.StatusFailed))
		Expect(statuses["dependent_on_failure"]).To(Equal(dag.StatusSkipped))

		v, ok := rc.Output("b")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))
	})

	It("honors the invariant: every ok node's deps are ok and finished before it started", func() {
		d, err := dag.New("invariant", []dag.DagNode{
			{Name: "a", Func: func(_ context.Context, _ *dag.RunContext) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			}},
			{Name: "b", Deps: []string{"a"}, Func: noop},
		})
		Expect(err).NotTo(HaveOccurred())

		rc := dag.NewRunContext("run-2", nil)
		rc = d.Execute(context.Background(), rc)

		events := map[string]dag.NodeEvent{}
		for _, e := range rc.Events() {
			if e.Status == dag.StatusOK {
				events[e.NodeName] = e
			}
		}
		Expect(events["a"].FinishedAt).To(BeTemporally("<=", events["b"].StartedAt))
	})

	It("fails a node whose timeout elapses before it finishes", func() {
		d, err := dag.New("timeout", []dag.DagNode{
			{Name: "slow", Timeout: time.Nanosecond, Func: func(ctx context.Context, _ *dag.RunContext) error {
				<-ctx.Done()
				return ctx.Err()
			}},
		})
		Expect(err).NotTo(HaveOccurred())

		rc := dag.NewRunContext("run-3", nil)
		rc = d.Execute(context.Background(), rc)
		Expect(rc.Failed()).To(BeTrue())
	})

	It("retries a failing node up to max_attempts until it succeeds", func() {
		attempts := 0
		d, err := dag.New("retry", []dag.DagNode{
			{Name: "flaky", RetryPolicy: &dag.RetryPolicy{MaxAttempts: 3, BackoffMS: 1}, Func: func(_ context.Context, _ *dag.RunContext) error {
				attempts++
				if attempts < 3 {
					return errors.New("not yet")
				}
				return nil
			}},
		})
		Expect(err).NotTo(HaveOccurred())

		rc := dag.NewRunContext("run-4", nil)
		rc = d.Execute(context.Background(), rc)
		Expect(rc.Failed()).To(BeFalse())
		Expect(attempts).To(Equal(3))
	})
})

func noop(_ context.Context, _ *dag.RunContext) error { return nil }
