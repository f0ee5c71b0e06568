package dispatcher

import (
	"context"
	"strings"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/skills"
)

// minUtteranceLength is the floor below which an utterance is too short to
// classify (spec §4.4 step 1).
const minUtteranceLength = 3

// isAmbiguous implements spec §4.4 step 1's three triggers: too short,
// multiple disjoint skill tables fire, or the router's LLM pre-check says
// so.
func (d *Dispatcher) isAmbiguous(ctx context.Context, utterance string) bool {
	trimmed := strings.TrimSpace(utterance)
	if len(trimmed) < minUtteranceLength {
		return true
	}

	matches := d.Registry.MatchingSkills(trimmed)
	if len(matches) > 1 {
		return true
	}

	if len(matches) == 0 && d.Router != nil {
		return d.routerSaysAmbiguous(ctx, trimmed)
	}

	return false
}

// routerSaysAmbiguous asks the text LLM a fixed single-token pre-check
// (spec §4.4 step 1: "the router's LLM pre-check returns ambiguous").
func (d *Dispatcher) routerSaysAmbiguous(ctx context.Context, utterance string) bool {
	names := d.Registry.Names()
	var sb strings.Builder
	sb.WriteString("Available skills: ")
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(n))
	}
	sb.WriteString(".\nIs the following request ambiguous given these skills? Respond with exactly one word, YES or NO.\n\nRequest: ")
	sb.WriteString(utterance)

	resp, err := d.Router.ChatWithTools(ctx, llm.AgentRequest{
		Messages: []llm.Message{{Role: "user", Content: sb.String()}},
	})
	d.recordEval("ambiguity_precheck", sb.String(), resp, err)
	if err != nil {
		return false // router unavailable: fail open, let keyword/LLM routing decide
	}
	return strings.EqualFold(strings.TrimSpace(resp.Content), "YES")
}

// route implements spec §4.4 step 3: deterministic keyword rules first,
// then a single-token LLM fallback; unknown/empty resolves to free_form.
func (d *Dispatcher) route(ctx context.Context, utterance string) skills.Name {
	matches := d.Registry.MatchingSkills(utterance)
	if len(matches) == 1 {
		return matches[0]
	}

	if d.Router == nil {
		return skills.FreeForm
	}

	names := d.Registry.Names()
	var sb strings.Builder
	sb.WriteString("Pick exactly one skill name from this list that best matches the request, ")
	sb.WriteString("responding with only that name and nothing else: ")
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(n))
	}
	sb.WriteString(".\n\nRequest: ")
	sb.WriteString(utterance)

	resp, err := d.Router.ChatWithTools(ctx, llm.AgentRequest{
		Messages: []llm.Message{{Role: "user", Content: sb.String()}},
	})
	d.recordEval("route", sb.String(), resp, err)
	if err != nil {
		return skills.FreeForm
	}

	tag := strings.TrimSpace(resp.Content)
	for _, n := range names {
		if strings.EqualFold(tag, string(n)) {
			return n
		}
	}
	return skills.FreeForm
}
