package skills

import (
	"regexp"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/browser"
)

// NewGenericBrowserSkill builds the `generic_browser` skill: the catch-all
// Vision-Action task for any web action that doesn't match a more
// specific skill's keywords. Verification defaults on per spec §9's open
// question, distinguishing it from lookup/research.
func NewGenericBrowserSkill(factory browser.Factory, vision llm.VisionClient) Skill {
	return Skill{
		Name:            GenericBrowser,
		KeywordRules:    nil, // intentionally unmatched by keyword rules; reached via LLM routing fallback
		VerifyByDefault: true,
		BuildDAG:        buildVisionSkillDAG("generic_browser", factory, vision, true),
	}
}
