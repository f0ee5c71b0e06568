package skills_test

import (
	"context"
	"errors"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/browser/fake"
	"github.com/kadai-ai/kadai/internal/skills"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type scriptedVision struct {
	responses []string
	calls     int
}

func (v *scriptedVision) Analyze(ctx context.Context, req llm.VisionRequest) (string, error) {
	if v.calls >= len(v.responses) {
		return "", errors.New("no more scripted responses")
	}
	r := v.responses[v.calls]
	v.calls++
	return r, nil
}
func (v *scriptedVision) Model() string { return "fake-vision" }

var _ = Describe("mail skill", func() {
	It("runs the 3-step inbox playbook and exposes a screenshot artifact (spec scenario 3)", func() {
		driver := fake.New()
		factory := func(ctx context.Context, opts browser.Options) (browser.Driver, error) { return driver, nil }

		mail := skills.NewMailSkill(factory)
		rc := dag.NewRunContext("run-1", map[string]any{"utterance": "check my inbox"})

		d, err := mail.BuildDAG(context.Background(), rc)
		Expect(err).NotTo(HaveOccurred())

		d.Execute(context.Background(), rc)

		summary, ok := rc.Output("summary")
		Expect(ok).To(BeTrue())
		Expect(summary).To(ContainSubstring("completed"))

		shot, ok := rc.Artifact("screenshot")
		Expect(ok).To(BeTrue())
		Expect(shot).To(Equal([]byte("fake-png")))

		Expect(rc.Failed()).To(BeFalse())
	})
})

var _ = Describe("lookup skill", func() {
	It("completes a vision-action task and surfaces the final answer", func() {
		driver := fake.New()
		factory := func(ctx context.Context, opts browser.Options) (browser.Driver, error) { return driver, nil }
		vision := &scriptedVision{responses: []string{
			`{"kind":"navigate","url":"https://example.com","rationale":"open site"}`,
			`{"kind":"complete","rationale":"found it"}`,
			`555-1212`,
		}}

		lookup := skills.NewLookupSkill(factory, vision)
		rc := dag.NewRunContext("run-2", map[string]any{"utterance": "find the phone number"})

		d, err := lookup.BuildDAG(context.Background(), rc)
		Expect(err).NotTo(HaveOccurred())
		d.Execute(context.Background(), rc)

		Expect(rc.Failed()).To(BeFalse())
		answer, ok := rc.Output("answer")
		Expect(ok).To(BeTrue())
		Expect(answer).To(Equal("555-1212"))
	})
})

var _ = Describe("Registry", func() {
	It("reports every skill whose keyword rules fire, for ambiguity detection", func() {
		reg := skills.NewRegistry()
		reg.Register(skills.NewMailSkill(nil))
		reg.Register(skills.NewCalendarSkill(nil))

		Expect(reg.MatchingSkills("what's in my inbox")).To(ConsistOf(skills.Mail))
		Expect(reg.MatchingSkills("what's on my agenda")).To(ConsistOf(skills.Calendar))
		Expect(reg.MatchingSkills("good morning")).To(BeEmpty())
	})
})
