package skills

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/memory"
)

const repoQuerySystemPrompt = "You answer questions about this repository using only the " +
	"retrieved insight snippets below. If they don't contain the answer, say so plainly."

// NewRepoQuerySkill builds the `repo_query` skill: answers questions
// against previously recorded REPO_INSIGHT memory items (spec §3
// MemoryItem.kind). It never shells out to git or a GitHub API directly —
// those CLI helpers are an explicit external collaborator outside this
// core's scope; repo_query only reads what earlier collectors or manual
// `memory.add` calls already wrote.
func NewRepoQuerySkill(store memory.Store, client llm.AgentClient) Skill {
	return Skill{
		Name: RepoQuery,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\brepo\b`),
			regexp.MustCompile(`\bcodebase\b`),
			regexp.MustCompile(`\bfunction\b`),
			regexp.MustCompile(`\bmodule\b`),
		},
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dag.New("repo_query.answer", []dag.DagNode{
				{
					Name:   "retrieve_and_answer",
					Writes: []string{"summary", "answer"},
					Func: func(ctx context.Context, rc *dag.RunContext) error {
						question, _ := rc.Inputs["utterance"].(string)
						kind := memory.KindRepoInsight
						hits, err := store.Search(ctx, question, &kind, nil, 8)
						if err != nil {
							return err
						}

						var b strings.Builder
						for _, h := range hits {
							fmt.Fprintf(&b, "- %s\n", h.Text)
						}
						if b.Len() == 0 {
							b.WriteString("(no matching repo insights recorded)\n")
						}

						answer, err := textChat(ctx, client, repoQuerySystemPrompt,
							fmt.Sprintf("Question: %s\n\nRetrieved insights:\n%s", question, b.String()))
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
