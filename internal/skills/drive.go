package skills

import (
	"context"
	"fmt"
	"regexp"

	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/playbook"
)

const defaultDriveURL = "https://drive.example.com/recent"

// NewDriveSkill builds the `drive` skill: a stable-selector recent-files
// playbook, mirroring NewCalendarSkill's shape.
func NewDriveSkill(factory browser.Factory) Skill {
	return Skill{
		Name: Drive,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bdrive\b`),
			regexp.MustCompile(`\brecent files?\b`),
			regexp.MustCompile(`\bdocuments?\b`),
		},
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dag.New("drive.recent", []dag.DagNode{
				{
					Name:   "recent",
					Writes: []string{"summary", "recent_text"},
					Func: func(ctx context.Context, rc *dag.RunContext) error {
						url := defaultDriveURL
						if v, ok := rc.Inputs["drive_url"]; ok {
							if s, ok := v.(string); ok && s != "" {
								url = s
							}
						}

						pb := playbook.Playbook{
							Name: "drive.recent",
							Steps: []playbook.Step{
								{Name: "go", Action: playbook.ActionNavigate, Params: map[string]any{"url": url}},
								{Name: "wait_list", Action: playbook.ActionWait, Params: map[string]any{"selector": "#recent-files"}},
								{Name: "extract", Action: playbook.ActionEvaluate, Params: map[string]any{"script": "document.querySelector('#recent-files').innerText"}},
							},
						}

						report, err := runPlaybook(ctx, factory, pb)
						if err != nil {
							return err
						}
						if n := len(report.Steps); n > 0 {
							if text, ok := report.Steps[n-1].Artifact.(string); ok {
								rc.SetOutput("recent_text", text)
								rc.SetOutput("summary", fmt.Sprintf("Recently modified: %s", text))
							}
						}
						if _, ok := rc.Output("summary"); !ok {
							rc.SetOutput("summary", reportSummary("drive recent files", report))
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
