package skills

import (
	"context"
	"regexp"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/dailyops"
	"github.com/kadai-ai/kadai/internal/memory"
)

// NewDailyOpsSkill wires the dailyops.BuildDAG collect→summarize→write_memory
// graph (spec §4.7) into the skill registry. It is reached through the
// dispatcher's keyword routing; the `daily` CLI subcommand dispatches
// "daily status", which these rules match.
func NewDailyOpsSkill(collectors []dailyops.Collector, client llm.AgentClient, store memory.Store) Skill {
	return Skill{
		Name: DailyOps,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bdaily\b`),
			regexp.MustCompile(`\btodo\b`),
			regexp.MustCompile(`\bstatus\b`),
		},
		BuildDAG: func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error) {
			return dailyops.BuildDAG(collectors, client, store)
		},
	}
}
