package visionagent_test

import (
	"context"
	"errors"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/browser/fake"
	"github.com/kadai-ai/kadai/internal/visionagent"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// scriptedVision returns its configured responses in order, one per call,
// and returns an error if asked for more than were scripted.
type scriptedVision struct {
	responses []string
	calls     int
}

func (v *scriptedVision) Analyze(ctx context.Context, req llm.VisionRequest) (string, error) {
	if v.calls >= len(v.responses) {
		return "", errors.New("scriptedVision: no more responses configured")
	}
	r := v.responses[v.calls]
	v.calls++
	return r, nil
}

func (v *scriptedVision) Model() string { return "fake-vision" }

type neverCalledVision struct{}

func (neverCalledVision) Analyze(ctx context.Context, req llm.VisionRequest) (string, error) {
	return "", errors.New("vision client must not be called")
}
func (neverCalledVision) Model() string { return "unused" }

var _ = Describe("Agent", func() {
	var (
		ctx    context.Context
		driver *fake.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = fake.New()
	})

	It("returns incomplete without calling the vision LLM when max_steps is 0", func() {
		agent := visionagent.New(neverCalledVision{}, driver)
		result, err := agent.Run(ctx, "find the unread count", visionagent.Config{MaxSteps: 0, MaxStepsSet: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(visionagent.StatusIncomplete))
		Expect(result.Steps).To(BeEmpty())
	})

	It("navigates, clicks, completes, and answers via a final QA prompt", func() {
		vision := &scriptedVision{responses: []string{
			`{"kind":"navigate","url":"https://mail.example.com","rationale":"open inbox"}`,
			`{"kind":"click","target_description":"unread filter","rationale":"narrow to unread"}`,
			`{"kind":"complete","rationale":"unread count visible"}`,
			`You have 3 unread messages.`,
		}}
		agent := visionagent.New(vision, driver)
		result, err := agent.Run(ctx, "how many unread emails do I have?", visionagent.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(visionagent.StatusOK))
		Expect(result.Answer).To(Equal("You have 3 unread messages."))
		Expect(result.Steps).To(HaveLen(3))
		Expect(vision.calls).To(Equal(4))
	})

	It("recovers from one malformed response via the strict-JSON clarifier", func() {
		vision := &scriptedVision{responses: []string{
			"sure! here's what I see on the page...",
			`{"kind":"complete","rationale":"recovered"}`,
			`done`,
		}}
		agent := visionagent.New(vision, driver)
		result, err := agent.Run(ctx, "check something", visionagent.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(visionagent.StatusOK))
		Expect(vision.calls).To(Equal(3))
	})

	It("forces completion after repeating the same action without progress", func() {
		vision := &scriptedVision{responses: []string{
			`{"kind":"click","target_description":"retry","rationale":"try again"}`,
			`{"kind":"click","target_description":"retry","rationale":"try again"}`,
			`{"kind":"click","target_description":"retry","rationale":"try again"}`,
			`i give up, here's what i found`,
		}}
		agent := visionagent.New(vision, driver)
		result, err := agent.Run(ctx, "stuck task", visionagent.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Status).To(Equal(visionagent.StatusOK))
		Expect(len(result.Steps)).To(BeNumerically("<", 20))
	})
})
