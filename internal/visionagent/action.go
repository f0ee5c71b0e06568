package visionagent

// Kind is a VisionAction's discriminator (spec §3).
type Kind string

const (
	KindClick    Kind = "click"
	KindType     Kind = "type"
	KindScroll   Kind = "scroll"
	KindNavigate Kind = "navigate"
	KindWait     Kind = "wait"
	KindComplete Kind = "complete"
)

// Action is a VisionAction (spec §3): exactly one action the vision LLM
// chose for the current step, with its rationale.
type Action struct {
	Kind              Kind   `json:"kind"`
	TargetDescription string `json:"target_description,omitempty"`
	Text              string `json:"text,omitempty"`
	URL               string `json:"url,omitempty"`
	DurationMS        int    `json:"duration_ms,omitempty"`
	Rationale         string `json:"rationale"`
}

// normalize returns a comparison key used for doom-loop detection: two
// actions normalize equal iff they'd have the same observable effect.
func (a Action) normalize() string {
	return string(a.Kind) + "|" + a.TargetDescription + "|" + a.Text + "|" + a.URL
}
