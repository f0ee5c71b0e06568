package skills

import (
	"context"
	"regexp"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/core/dag"
	"github.com/kadai-ai/kadai/internal/browser"
	"github.com/kadai-ai/kadai/internal/visionagent"
)

// NewLookupSkill builds the `lookup` skill: a single loosely-specified
// browser fact-finding task run through the Vision-Action Agent (spec
// §4.5 purpose example: "find the phone number of Target in Tinley
// Park"). Verification defaults off per spec §9's open question.
func NewLookupSkill(factory browser.Factory, vision llm.VisionClient) Skill {
	return Skill{
		Name: Lookup,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bfind\b`),
			regexp.MustCompile(`\blook\s?up\b`),
			regexp.MustCompile(`\bphone number\b`),
			regexp.MustCompile(`\bwhat is\b`),
			regexp.MustCompile(`\bwhere is\b`),
		},
		VerifyByDefault: false,
		BuildDAG:        buildVisionSkillDAG("lookup", factory, vision, false),
	}
}
