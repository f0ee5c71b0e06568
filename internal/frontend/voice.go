package frontend

import (
	"context"
	"strings"

	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/kadai-ai/kadai/internal/speech"
	"github.com/kadai-ai/kadai/internal/wakeword"
)

const (
	defaultSilenceMS = 3000
	defaultMaxMS     = 15000
)

var exitPhrases = []string{"exit", "quit", "goodbye"}

// VoiceConfig tunes one VoiceFrontend turn.
type VoiceConfig struct {
	// BargeIn skips wake-word gating and starts listening immediately on
	// every turn; used when no wakeword.Detector is available (spec §4.6:
	// "unavailability degrades the voice frontend to barge-in mode").
	BargeIn   bool
	SilenceMS int
	MaxMS     int
}

// VoiceFrontend runs the capture→transcribe→dispatch→speak loop (spec
// §4.6), grounded on cmd/explore/main.go's REPL shape: read one query,
// act on it, print/speak the result, repeat until an exit phrase.
type VoiceFrontend struct {
	Dispatcher *dispatcher.Dispatcher
	ASR        speech.ASR
	TTS        speech.TTS
	Wake       wakeword.Detector // nil forces barge-in mode
	Config     VoiceConfig
}

// RunTurn executes exactly one listen→dispatch→speak cycle. It returns
// done=true once an exit phrase was spoken, signalling the caller's loop
// to stop calling RunTurn again.
func (f *VoiceFrontend) RunTurn(ctx context.Context) (done bool, err error) {
	if !f.Config.BargeIn && f.Wake != nil {
		heard, err := f.Wake.ListenOnce(ctx, defaultSilenceMS)
		if err != nil {
			return false, err
		}
		if !heard {
			return false, nil
		}
	}

	silenceMS := f.Config.SilenceMS
	if silenceMS <= 0 {
		silenceMS = defaultSilenceMS
	}
	maxMS := f.Config.MaxMS
	if maxMS <= 0 {
		maxMS = defaultMaxMS
	}

	utterance, err := f.ASR.TranscribeUntilSilence(ctx, silenceMS, maxMS)
	if err != nil {
		return false, err
	}
	if utterance == "" {
		return false, nil
	}

	if isExitPhrase(utterance) {
		_ = f.TTS.Speak(ctx, "Goodbye.", true)
		return true, nil
	}

	result, err := f.Dispatcher.Dispatch(ctx, dispatcher.TaskContext{
		Utterance: utterance,
		Source:    dispatcher.SourceVoice,
		Clarify: func(ctx context.Context, question string) (string, error) {
			if err := f.TTS.Speak(ctx, question, true); err != nil {
				return "", err
			}
			return f.ASR.TranscribeUntilSilence(ctx, silenceMS, maxMS)
		},
	})
	if err != nil {
		return false, err
	}

	spoken := result.Summary
	if result.Answer != "" && result.Answer != result.Summary {
		spoken = strings.TrimSpace(spoken + ". " + result.Answer)
	}
	if spoken != "" {
		_ = f.TTS.Speak(ctx, spoken, true)
	}

	return false, nil
}

// Run calls RunTurn until it reports done or ctx is cancelled.
func (f *VoiceFrontend) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		done, err := f.RunTurn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func isExitPhrase(utterance string) bool {
	u := strings.ToLower(strings.TrimSpace(utterance))
	for _, p := range exitPhrases {
		if u == p {
			return true
		}
	}
	return false
}
