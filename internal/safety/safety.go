// Package safety implements the dispatcher's safety gate (spec §4.4 step 2):
// utterances matching a configurable list of risky verb patterns require an
// explicit confirmation token before the dispatcher is allowed to route
// them to a skill. Grounded on internal/brain/keywords.go's regex-table
// classifier shape, repurposed from intent classification to a single
// match/no-match gate.
package safety

import (
	"regexp"
	"strings"

	"github.com/kadai-ai/kadai/internal/errs"
)

// DefaultPatterns is the out-of-the-box risky verb list from spec §4.4.
var DefaultPatterns = []string{
	`\bdelete\b`, `\bremove\b`, `\bwipe\b`, `\bsend\b`, `\bpay\b`, `\btransfer\b`, `rm -rf`,
}

// DefaultConfirmToken is the utterance substring that counts as explicit
// confirmation (spec §4.4 step 2: "an explicit confirmation token from the
// source, e.g. 'confirm'").
const DefaultConfirmToken = "confirm"

type Gate struct {
	patterns     []*regexp.Regexp
	confirmToken string
}

// New compiles patterns (falling back to DefaultPatterns when nil) into a
// Gate. An invalid regex is a construction-time error, not a runtime one.
func New(patterns []string, confirmToken string) (*Gate, error) {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	if confirmToken == "" {
		confirmToken = DefaultConfirmToken
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Gate{patterns: compiled, confirmToken: confirmToken}, nil
}

// Check returns nil when the utterance is safe to route directly, or when
// it matches a risky pattern and already carries the confirmation token.
// Otherwise it returns errs.Refused itself; the dispatcher emits a
// safe refusal and records it (spec §4.4 step 2).
func (g *Gate) Check(utterance string) error {
	matched := g.matches(utterance)
	if !matched {
		return nil
	}
	if strings.Contains(strings.ToLower(utterance), g.confirmToken) {
		return nil
	}
	return errs.Refused
}

func (g *Gate) matches(utterance string) bool {
	for _, re := range g.patterns {
		if re.MatchString(utterance) {
			return true
		}
	}
	return false
}
