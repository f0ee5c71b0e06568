package playbook_test

import (
	"context"
	"errors"

	"github.com/kadai-ai/kadai/internal/browser/fake"
	"github.com/kadai-ai/kadai/internal/playbook"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Runner", func() {
	var (
		ctx    context.Context
		driver *fake.Driver
		runner *playbook.Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = fake.New()
		runner = playbook.New(driver)
	})

	It("runs a 3-step happy path and records a screenshot artifact", func() {
		pb := playbook.Playbook{
			Name: "mail.inbox",
			Steps: []playbook.Step{
				{Name: "go", Action: playbook.ActionNavigate, Params: map[string]any{"url": "https://mail.example.com"}},
				{Name: "wait_inbox", Action: playbook.ActionWait, Params: map[string]any{"selector": "#inbox"}},
				{Name: "shot", Action: playbook.ActionScreenshot, Params: map[string]any{}},
			},
		}
		report, err := runner.Run(ctx, pb)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Succeeded).To(BeTrue())
		Expect(report.Steps[2].Artifact).To(Equal([]byte("fake-png")))
	})

	It("continues past a failing step when on_failure=continue, still evaluating postconditions", func() {
		driver.ClickErr = errors.New("not found")
		pb := playbook.Playbook{
			Name: "continue-case",
			Steps: []playbook.Step{
				{Name: "click_missing", Action: playbook.ActionClick, Params: map[string]any{"selector": "#missing"}, OnFailure: playbook.Continue()},
				{Name: "shot", Action: playbook.ActionScreenshot, Params: map[string]any{}},
			},
			Postconditions: []playbook.Step{
				{Name: "post", Action: playbook.ActionScreenshot, Params: map[string]any{}},
			},
		}
		report, err := runner.Run(ctx, pb)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Steps[0].Failed).To(BeTrue())
		Expect(report.Steps[1].Failed).To(BeFalse())
		Expect(report.Succeeded).To(BeFalse())
	})

	It("aborts on a failing step with the default on_failure", func() {
		driver.NavigateErr = errors.New("blocked")
		pb := playbook.Playbook{
			Name: "abort-case",
			Steps: []playbook.Step{
				{Name: "go", Action: playbook.ActionNavigate, Params: map[string]any{"url": "https://x"}},
				{Name: "never", Action: playbook.ActionScreenshot, Params: map[string]any{}},
			},
		}
		report, err := runner.Run(ctx, pb)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Steps).To(HaveLen(1))
		Expect(report.Succeeded).To(BeFalse())
	})

	It("skips a step whose guard is false without marking it failed", func() {
		pb := playbook.Playbook{
			Name: "guard-case",
			Steps: []playbook.Step{
				{Name: "maybe", Action: playbook.ActionClick, Params: map[string]any{"selector": "#x"}, Guard: func(map[string]any) bool { return false }},
			},
		}
		report, err := runner.Run(ctx, pb)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Steps[0].Skipped).To(BeTrue())
		Expect(report.Steps[0].Failed).To(BeFalse())
	})

	It("succeeds trivially on an empty step list, still evaluating postconditions", func() {
		pb := playbook.Playbook{
			Name:           "empty",
			Postconditions: []playbook.Step{{Name: "post", Action: playbook.ActionScreenshot, Params: map[string]any{}}},
		}
		report, err := runner.Run(ctx, pb)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Succeeded).To(BeTrue())
		Expect(report.Steps).To(HaveLen(1))
	})
})
