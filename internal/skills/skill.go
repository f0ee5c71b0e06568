// Package skills implements the skill registry named in spec §4.4 and
// §4.6: thin adapters owning keyword rules and a build_dag factory. Each
// skill's actual work happens inside the Dag it builds — skills here are
// wiring, not logic, matching the teacher's thin handler-over-executor
// split (internal/worker.Worker wraps internal/brain.Executor the same way).
package skills

import (
	"context"
	"regexp"
	"strings"

	"github.com/kadai-ai/kadai/core/dag"
)

// Name enumerates the skills the core ships (spec §4.4 skill registry,
// GLOSSARY "Skill").
type Name string

const (
	Calendar       Name = "calendar"
	Mail           Name = "mail"
	Drive          Name = "drive"
	Lookup         Name = "lookup"
	Research       Name = "research"
	GenericBrowser Name = "generic_browser"
	FreeForm       Name = "free_form"
	DailyOps       Name = "daily_ops"
	RepoQuery      Name = "repo_query"
)

// BuildFunc constructs the Dag for one invocation of a skill, given the
// utterance and metadata that seeded the RunContext's Inputs.
type BuildFunc func(ctx context.Context, rc *dag.RunContext) (*dag.Dag, error)

// Skill is `{name, keyword_rules, build_dag(ctx)→Dag}` (spec §4.4).
type Skill struct {
	Name Name

	// KeywordRules are evaluated before any LLM fallback (spec §4.4 step 3).
	KeywordRules []*regexp.Regexp

	BuildDAG BuildFunc

	// VerifyByDefault records whether the Vision-Action Agent
	// post-action-verifies for this skill absent an explicit override
	// (spec §9 open question: default on for generic_browser, off for
	// lookup/research). buildVisionSkillDAG does not read this field; each
	// vision skill passes the same value as its verifyDefault argument.
	VerifyByDefault bool
}

// Matches reports whether the utterance fires this skill's keyword rules.
func (s Skill) Matches(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, re := range s.KeywordRules {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// Registry holds the skill table the dispatcher routes against.
type Registry struct {
	skills map[Name]Skill
	order  []Name
}

func NewRegistry() *Registry {
	return &Registry{skills: make(map[Name]Skill)}
}

func (r *Registry) Register(s Skill) {
	if _, exists := r.skills[s.Name]; !exists {
		r.order = append(r.order, s.Name)
	}
	r.skills[s.Name] = s
}

func (r *Registry) Get(name Name) (Skill, bool) {
	s, ok := r.skills[name]
	return s, ok
}

// Names returns skill names in registration order, for building a fixed
// router prompt listing (spec §4.4 step 3).
func (r *Registry) Names() []Name {
	out := make([]Name, len(r.order))
	copy(out, r.order)
	return out
}

// MatchingSkills returns every registered skill whose keyword rules fire
// on utterance, in registration order. More than one match on disjoint
// skill tables is the ambiguity signal in spec §4.4 step 1.
func (r *Registry) MatchingSkills(utterance string) []Name {
	var out []Name
	for _, name := range r.order {
		if r.skills[name].Matches(utterance) {
			out = append(out, name)
		}
	}
	return out
}
