package dispatcher_test

import (
	"context"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/safety"
	"github.com/kadai-ai/kadai/internal/skills"
	"github.com/kadai-ai/kadai/internal/thread"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeAgentClient struct{ response string }

func (c *fakeAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	return &llm.AgentResponse{Content: c.response}, nil
}
func (c *fakeAgentClient) Model() string { return "fake-text" }

var idCounter int

func nextID() string {
	idCounter++
	return string(rune('a' + idCounter))
}

func newTestDispatcher() *dispatcher.Dispatcher {
	reg := skills.NewRegistry()
	reg.Register(skills.NewFreeFormSkill(&fakeAgentClient{response: "Sure, here you go."}))

	noopFactory := func(ctx context.Context, opts browser.Options) (browser.Driver, error) {
		return nil, errs.Unavailable
	}
	reg.Register(skills.NewMailSkill(noopFactory))

	gate, _ := safety.New(nil, "")
	mem := memory.New(nextID, nil)
	threads := thread.New(nextID)
	kg := graph.New()

	return dispatcher.New(reg, gate, nil, mem, threads, kg, nextID)
}

var _ = Describe("Dispatcher", func() {
	It("routes a trivial utterance to free_form and writes back exactly once (spec scenario 1)", func() {
		d := newTestDispatcher()
		result, err := d.Dispatch(context.Background(), dispatcher.TaskContext{
			Utterance: "hello there",
			Source:    dispatcher.SourceText,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(dispatcher.StatusOK))
		Expect(result.Summary).NotTo(BeEmpty())
		Expect(result.ThreadID).NotTo(BeEmpty())
	})

	It("lets the safety gate refuse a risky utterance ahead of routing (spec scenario 2)", func() {
		d := newTestDispatcher()
		result, err := d.Dispatch(context.Background(), dispatcher.TaskContext{
			Utterance: "send delete",
			Source:    dispatcher.SourceText,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(dispatcher.StatusRefused))
		Expect(result.Summary).To(ContainSubstring("confirmation"))
	})

	It("lets a confirmed risky utterance proceed to routing", func() {
		d := newTestDispatcher()
		result, err := d.Dispatch(context.Background(), dispatcher.TaskContext{
			Utterance: "send delete, confirm",
			Source:    dispatcher.SourceText,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).NotTo(Equal(dispatcher.StatusRefused))
	})

	It("asks one clarifying follow-up for a too-short utterance, then routes the resolved utterance", func() {
		d := newTestDispatcher()
		asked := false
		result, err := d.Dispatch(context.Background(), dispatcher.TaskContext{
			Utterance: "hi",
			Source:    dispatcher.SourceText,
			Clarify: func(ctx context.Context, question string) (string, error) {
				asked = true
				return "check my inbox please", nil
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(asked).To(BeTrue())
		Expect(result.Status).NotTo(Equal(dispatcher.StatusClarificationNeeded))
	})

	It("gives up after one unresolved clarification loop", func() {
		d := newTestDispatcher()
		result, err := d.Dispatch(context.Background(), dispatcher.TaskContext{
			Utterance: "hi",
			Source:    dispatcher.SourceText,
			Clarify: func(ctx context.Context, question string) (string, error) {
				return "ok", nil // still below minUtteranceLength's effect: ambiguous again
			},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(dispatcher.StatusClarificationNeeded))
	})
})
