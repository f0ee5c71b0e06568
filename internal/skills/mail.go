package skills

import (
	"context"
	"regexp"

	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/playbook"
)

// defaultInboxURL is used when RunContext.Inputs["inbox_url"] is absent,
// so the skill is usable out of the box.
const defaultInboxURL = "https://mail.example.com"

// NewMailSkill builds the `mail` skill (spec §4.4 registry, §8 scenario 3:
// "Skill mail.inbox runs 3-step playbook (navigate, wait_for #inbox,
// screenshot)").
func NewMailSkill(factory browser.Factory) Skill {
	return Skill{
		Name: Mail,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bmail\b`),
			regexp.MustCompile(`\binbox\b`),
			regexp.MustCompile(`\bunread\b`),
			regexp.MustCompile(`\bemail\b`),
		},
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dag.New("mail.inbox", []dag.DagNode{
				{
					Name:   "inbox",
					Writes: []string{"summary", "screenshot"},
					Func: func(ctx context.Context, rc *dag.RunContext) error {
						url := defaultInboxURL
						if v, ok := rc.Inputs["inbox_url"]; ok {
							if s, ok := v.(string); ok && s != "" {
								url = s
							}
						}

						pb := playbook.Playbook{
							Name: "mail.inbox",
							Steps: []playbook.Step{
								{Name: "go", Action: playbook.ActionNavigate, Params: map[string]any{"url": url}},
								{Name: "wait_inbox", Action: playbook.ActionWait, Params: map[string]any{"selector": "#inbox"}},
								{Name: "shot", Action: playbook.ActionScreenshot, Params: map[string]any{}},
							},
						}

						report, err := runPlaybook(ctx, factory, pb)
						if err != nil {
							return err
						}
						rc.SetOutput("summary", reportSummary("mail inbox check", report))
						if n := len(report.Steps); n > 0 {
							if shot := report.Steps[n-1].Artifact; shot != nil {
								rc.SetArtifact("screenshot", shot)
							}
						}
						if !report.Succeeded {
							return errNotOK(report)
						}
						return nil
					},
				},
			})
		},
	}
}
