package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment, so call sites never have
// to repeat run_id/skill/source on every log line.
type LogFields struct {
	RunID     *string // DAG RunContext.run_id
	TaskID    *string // dispatcher TaskContext.id
	NodeName  *string // currently executing DAG node
	Skill     *string // skill handling the current task
	Source    *string // text | voice | hotkey | ambient
	Component string  // e.g. "dispatcher", "dag", "visionagent"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.TaskID != nil {
		result.TaskID = next.TaskID
	}
	if next.NodeName != nil {
		result.NodeName = next.NodeName
	}
	if next.Skill != nil {
		result.Skill = next.Skill
	}
	if next.Source != nil {
		result.Source = next.Source
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr creates a pointer from a value, for inline LogFields construction.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
