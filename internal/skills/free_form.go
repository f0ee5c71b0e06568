package skills

import (
	"context"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
)

const freeFormSystemPrompt = "You are a helpful local assistant. Answer the user's request directly and concisely."

// NewFreeFormSkill builds the `free_form` skill: the dispatcher's fallback
// when routing can't identify a more specific skill (spec §4.4 step 3:
// "Unknown/empty → generic") and when ambiguity resolution gives up (spec
// §4.4 step 1: "If still ambiguous, route to the generic free-form
// skill"). No keyword rules: it is never matched directly, only selected
// as a fallback by the dispatcher.
func NewFreeFormSkill(client llm.AgentClient) Skill {
	return Skill{
		Name:         FreeForm,
		KeywordRules: nil,
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dag.New("free_form.answer", []dag.DagNode{
				{
					Name:   "answer",
					Writes: []string{"summary", "answer"},
					Func: func(ctx context.Context, rc *dag.RunContext) error {
						utterance, _ := rc.Inputs["utterance"].(string)
						answer, err := textChat(ctx, client, freeFormSystemPrompt, utterance)
						if err != nil {
							return err
						}
						rc.SetOutput("answer", answer)
						rc.SetOutput("summary", answer)
						return nil
					},
				},
			})
		},
	}
}
