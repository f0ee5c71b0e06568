package visionagent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseAction applies the strict → lenient parsing half of spec §9's
// "strict → lenient → retry-with-clarifier → fail" ladder; the
// retry-with-clarifier and fail steps are driven by the caller (Agent.reason),
// which re-prompts the vision LLM on a parse failure exactly once (spec
// §4.5 step 3). Grounded on oasis/memory's ParseExtractedFacts: try a
// direct unmarshal first, then recover a JSON object embedded in
// markdown-fenced or chatty model output.
func parseAction(response string) (Action, error) {
	var a Action
	trimmed := strings.TrimSpace(response)

	if err := json.Unmarshal([]byte(trimmed), &a); err == nil && a.Kind != "" {
		return a, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &a); err == nil && a.Kind != "" {
			return a, nil
		}
	}

	return Action{}, fmt.Errorf("vision action: could not parse a VisionAction from response")
}

const strictJSONClarifier = "Your previous response was not a single valid JSON object. " +
	"Respond with ONLY a JSON object of the form " +
	`{"kind": "click|type|scroll|navigate|wait|complete", "target_description": "...", "text": "...", "url": "...", "duration_ms": 0, "rationale": "..."}` +
	" and nothing else."
