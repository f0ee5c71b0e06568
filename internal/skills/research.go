package skills

import (
	"regexp"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/browser"
)

// NewResearchSkill builds the `research` skill: a multi-step,
// loosely-specified browsing task (comparisons, open-ended reading) run
// through the Vision-Action Agent. Verification defaults off per spec §9's
// open question, same as `lookup`.
func NewResearchSkill(factory browser.Factory, vision llm.VisionClient) Skill {
	return Skill{
		Name: Research,
		KeywordRules: []*regexp.Regexp{
			regexp.MustCompile(`\bresearch\b`),
			regexp.MustCompile(`\bcompare\b`),
			regexp.MustCompile(`\breviews?\b`),
			regexp.MustCompile(`\bsummarize\b`),
		},
		VerifyByDefault: false,
		BuildDAG:        buildVisionSkillDAG("research", factory, vision, false),
	}
}
