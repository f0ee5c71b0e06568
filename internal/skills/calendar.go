package skills

import (
	"context"
	"fmt"
	"regexp"

	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/playbook"
)

const defaultCalendarURL = "https://calendar.example.com/day"

// NewCalendarSkill builds the `calendar` skill: a stable-selector day-view
// playbook that extracts today's agenda text via evaluate() (spec §4.3
// "flows that have stable selectors").
func NewCalendarSkill(factory browser.Factory) Skill {
	return Skill{
		Name: Calendar,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bcalendar\b`),
			regexp.MustCompile(`\bagenda\b`),
			regexp.MustCompile(`\bschedule\b`),
			regexp.MustCompile(`\bmeetings?\b`),
		},
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dag.New("calendar.day", []dag.DagNode{
				{
					Name:   "agenda",
					Writes: []string{"summary", "agenda_text"},
					Func: func(ctx context.Context, rc *dag.RunContext) error {
						url := defaultCalendarURL
						if v, ok := rc.Inputs["calendar_url"]; ok {
							if s, ok := v.(string); ok && s != "" {
								url = s
							}
						}

						pb := playbook.Playbook{
							Name: "calendar.day",
							Steps: []playbook.Step{
								{Name: "go", Action: playbook.ActionNavigate, Params: map[string]any{"url": url}},
								{Name: "wait_agenda", Action: playbook.ActionWait, Params: map[string]any{"selector": "#agenda"}},
								{Name: "extract", Action: playbook.ActionEvaluate, Params: map[string]any{"script": "document.querySelector('#agenda').innerText"}},
							},
						}

						report, err := runPlaybook(ctx, factory, pb)
						if err != nil {
							return err
						}
						if n := len(report.Steps); n > 0 {
							if text, ok := report.Steps[n-1].Artifact.(string); ok {
								rc.SetOutput("agenda_text", text)
								rc.SetOutput("summary", fmt.Sprintf("Today's agenda: %s", text))
							}
						}
						if _, ok := rc.Output("summary"); !ok {
							rc.SetOutput("summary", reportSummary("calendar day view", report))
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
