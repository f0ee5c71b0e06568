package frontend

import (
	"context"
	"strings"

	"github.com/kadai-ai/kadai/internal/dispatcher"
)

// Chord is a named key combination, e.g. "ctrl+shift+k" or the catch-all
// "*" default bound in NewHotkeyManager.
type Chord string

// Handler runs whatever a hotkey triggers and returns a short spoken or
// displayed acknowledgement.
type Handler func(ctx context.Context) (string, error)

// HotkeyManager maps key chords to single-shot handlers (spec §4.6).
// Registration happens at construction; there is no dynamic rebinding at
// runtime beyond Register.
type HotkeyManager struct {
	handlers map[Chord]Handler
}

// NewHotkeyManager wires the default "*" chord to the three-summary daily
// rollup (calendar agenda, unread mail, recent drive activity,
// concatenated) described in spec §4.6, then lets the caller Register
// additional chords.
func NewHotkeyManager(d *dispatcher.Dispatcher) *HotkeyManager {
	m := &HotkeyManager{handlers: make(map[Chord]Handler)}
	m.Register("*", defaultSummaryHandler(d))
	return m
}

// Register binds a chord to a handler, overwriting any existing binding.
func (m *HotkeyManager) Register(chord Chord, h Handler) {
	m.handlers[chord] = h
}

// Trigger looks up and runs the handler bound to chord.
func (m *HotkeyManager) Trigger(ctx context.Context, chord Chord) (string, error) {
	h, ok := m.handlers[chord]
	if !ok {
		return "", nil
	}
	return h(ctx)
}

func defaultSummaryHandler(d *dispatcher.Dispatcher) Handler {
	utterances := []string{
		"what's on my calendar today",
		"what's unread in my inbox",
		"what changed recently in my drive",
	}
	return func(ctx context.Context) (string, error) {
		var parts []string
		for _, u := range utterances {
			result, err := d.Dispatch(ctx, dispatcher.TaskContext{
				Utterance: u,
				Source:    dispatcher.SourceHotkey,
			})
			if err != nil {
				return "", err
			}
			if result.Summary != "" {
				parts = append(parts, result.Summary)
			}
		}
		return strings.Join(parts, "\n"), nil
	}
}
