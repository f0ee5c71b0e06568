// Package speech declares the ASR/TTS contract the Voice Frontend consumes
// (spec §6). Both engines are explicitly out of scope (spec §1 Non-goals);
// only the contract and a recording fake for tests live here.
package speech

import "context"

// ASR is the speech-to-text collaborator. TranscribeUntilSilence must
// surface "no speech" as an empty string, not an error (spec §6).
type ASR interface {
	TranscribeUntilSilence(ctx context.Context, silenceMS, maxMS int) (string, error)
}

// TTS is the text-to-speech collaborator.
type TTS interface {
	Speak(ctx context.Context, text string, blocking bool) error
}
