package main

import (
	"github.com/kadai-ai/kadai/internal/frontend"
	"github.com/spf13/cobra"
)

func newVoiceCmd() *cobra.Command {
	var bargeIn bool
	var silenceMS, maxMS int

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Run the voice frontend loop until an exit phrase is heard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.shutdown(cmd.Context())

			asr, tts, wake, err := a.speechCollaborators(bargeIn)
			if err != nil {
				return newUsageError(err.Error())
			}

			vf := &frontend.VoiceFrontend{
				Dispatcher: a.dispatch,
				ASR:        asr,
				TTS:        tts,
				Wake:       wake,
				Config: frontend.VoiceConfig{
					BargeIn:   bargeIn,
					SilenceMS: silenceMS,
					MaxMS:     maxMS,
				},
			}
			return vf.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&bargeIn, "barge-in", false, "skip wake-word gating and listen on every turn")
	cmd.Flags().IntVar(&silenceMS, "silence", 0, "silence duration (ms) that ends capture; 0 uses the default")
	cmd.Flags().IntVar(&maxMS, "max", 0, "maximum capture duration (ms); 0 uses the default")
	return cmd
}
