package skills

import (
	"context"
	"fmt"
	"strings"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/errs"
	"github.com/kadai-ai/kadai/internal/playbook"
	"github.com/kadai-ai/kadai/internal/visionagent"
)

// textChat is the minimal "chat(messages) -> string" shape spec §6
// requires of the text LLM client, built on top of the richer
// tool-calling AgentClient the teacher's agent loops already use.
func textChat(ctx context.Context, client llm.AgentClient, system, user string) (string, error) {
	resp, err := client.ChatWithTools(ctx, llm.AgentRequest{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// runPlaybook launches a fresh browser context (spec §5: "concurrent
// skills each instantiate their own browser context"), runs pb through a
// playbook.Runner, and always closes the driver before returning.
func runPlaybook(ctx context.Context, factory browser.Factory, pb playbook.Playbook) (playbook.Report, error) {
	driver, err := factory(ctx, browser.Options{Headless: true})
	if err != nil {
		return playbook.Report{}, fmt.Errorf("launching browser for playbook %q: %w", pb.Name, err)
	}
	defer driver.Close(ctx)

	runner := playbook.New(driver)
	return runner.Run(ctx, pb)
}

// runVisionTask launches a fresh browser context and drives it with a
// bounded Vision-Action Agent run (spec §4.5).
func runVisionTask(ctx context.Context, factory browser.Factory, vision llm.VisionClient, task string, cfg visionagent.Config) (visionagent.Result, error) {
	driver, err := factory(ctx, browser.Options{Headless: true})
	if err != nil {
		return visionagent.Result{}, fmt.Errorf("launching browser for vision task: %w", err)
	}
	defer driver.Close(ctx)

	agent := visionagent.New(vision, driver)
	return agent.Run(ctx, task, cfg)
}

// reportSummary mirrors playbook.Report.Succeeded into a one-line
// summary string for RunContext.Outputs["summary"].
func reportSummary(name string, report playbook.Report) string {
	if report.Succeeded {
		return fmt.Sprintf("%s completed", name)
	}
	var failed []string
	for _, s := range report.Steps {
		if s.Failed {
			failed = append(failed, s.Name)
		}
	}
	return fmt.Sprintf("%s did not complete (failed steps: %s)", name, strings.Join(failed, ", "))
}

// buildVisionSkillDAG wraps a single Vision-Action Agent run into a
// one-node Dag shared by the lookup/research/generic_browser skills,
// which differ only in their keyword rules and verification default.
func buildVisionSkillDAG(skillName string, factory browser.Factory, vision llm.VisionClient, verifyDefault bool) BuildFunc {
	return func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
		return dag.New(skillName, []dag.DagNode{
			{
				Name:   "vision_task",
				Writes: []string{"summary", "answer", "action_log"},
				Func: func(ctx context.Context, rc *dag.RunContext) error {
					task, _ := rc.Inputs["utterance"].(string)
					startingURL, _ := rc.Inputs["starting_url"].(string)
					verify := verifyDefault
					if v, ok := rc.Inputs["verify"].(bool); ok {
						verify = v
					}

					result, err := runVisionTask(ctx, factory, vision, task, visionagent.Config{
						StartingURL: startingURL,
						Verify:      verify,
					})
					if err != nil {
						return err
					}

					rc.SetOutput("answer", result.Answer)
					rc.SetOutput("action_log", result.Steps)
					switch result.Status {
					case visionagent.StatusOK:
						rc.SetOutput("summary", fmt.Sprintf("%s completed in %d steps", skillName, len(result.Steps)))
						return nil
					case visionagent.StatusIncomplete:
						rc.SetOutput("summary", fmt.Sprintf("%s did not complete within the step budget", skillName))
						return fmt.Errorf("%s: %w", skillName, errs.Timeout)
					default:
						rc.SetOutput("summary", fmt.Sprintf("%s failed: %s", skillName, result.Reason))
						return fmt.Errorf("%s: %w", skillName, errs.Unavailable)
					}
				},
			},
		})
	}
}

// errNotOK turns an unsuccessful playbook.Report into a node error so the
// DAG engine marks the node failed (spec §4.1: "if a node raises, its
// status is failed").
func errNotOK(report playbook.Report) error {
	last := "preconditions"
	if len(report.Steps) > 0 {
		last = report.Steps[len(report.Steps)-1].Name
	}
	return fmt.Errorf("playbook did not succeed at %q: %w", last, errs.Unavailable)
}
