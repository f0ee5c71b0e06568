package frontend_test

import (
	"context"
	"time"

	"github.com/kadai-ai/kadai/common/llm"
	"github.com/kadai-ai/kadai/internal/dispatcher"
	"github.com/kadai-ai/kadai/internal/frontend"
	"github.com/kadai-ai/kadai/internal/graph"
	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/safety"
	"github.com/kadai-ai/kadai/internal/skills"
	"github.com/kadai-ai/kadai/internal/speech"
	"github.com/kadai-ai/kadai/internal/thread"
	"github.com/kadai-ai/kadai/internal/wakeword"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeAgentClient struct{ response string }

func (c *fakeAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	return &llm.AgentResponse{Content: c.response}, nil
}
func (c *fakeAgentClient) Model() string { return "fake-text" }

var idCounter int

func nextID() string {
	idCounter++
	return string(rune('a' + idCounter))
}

func newTestDispatcher(response string) *dispatcher.Dispatcher {
	reg := skills.NewRegistry()
	reg.Register(skills.NewFreeFormSkill(&fakeAgentClient{response: response}))

	gate, _ := safety.New(nil, "")
	mem := memory.New(nextID, nil)
	threads := thread.New(nextID)
	kg := graph.New()

	return dispatcher.New(reg, gate, nil, mem, threads, kg, nextID)
}

var _ = Describe("AmbientMonitor", func() {
	It("ticks on its interval and stops cleanly", func() {
		d := newTestDispatcher("ambient check complete")
		m := &frontend.AmbientMonitor{Dispatcher: d, Task: "daily check", Interval: 10 * time.Millisecond}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m.Start(ctx)
		time.Sleep(50 * time.Millisecond)
		m.Stop()

		items, err := d.Memory.ListByKind(context.Background(), memory.KindTaskResult, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(items)).To(BeNumerically(">=", 1))
	})
})

var _ = Describe("HotkeyManager", func() {
	It("runs the default chord's three-summary rollup and concatenates results", func() {
		d := newTestDispatcher("ok")
		m := frontend.NewHotkeyManager(d)

		out, err := m.Trigger(context.Background(), "*")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(BeEmpty())
	})

	It("returns empty for an unbound chord", func() {
		d := newTestDispatcher("ok")
		m := frontend.NewHotkeyManager(d)

		out, err := m.Trigger(context.Background(), "ctrl+shift+z")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})
})

var _ = Describe("VoiceFrontend", func() {
	It("transcribes, dispatches, and speaks a response in barge-in mode", func() {
		d := newTestDispatcher("Here's your answer.")
		rec := &speech.Recorder{Transcripts: []string{"tell me something"}}
		vf := &frontend.VoiceFrontend{
			Dispatcher: d,
			ASR:        rec,
			TTS:        rec,
			Config:     frontend.VoiceConfig{BargeIn: true},
		}

		done, err := vf.RunTurn(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(rec.Spoken).To(HaveLen(1))
		Expect(rec.Spoken[0]).NotTo(BeEmpty())
	})

	It("treats an exit phrase as a termination signal without dispatching", func() {
		d := newTestDispatcher("should not be reached")
		rec := &speech.Recorder{Transcripts: []string{"goodbye"}}
		vf := &frontend.VoiceFrontend{
			Dispatcher: d,
			ASR:        rec,
			TTS:        rec,
			Config:     frontend.VoiceConfig{BargeIn: true},
		}

		done, err := vf.RunTurn(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeTrue())
		Expect(rec.Spoken).To(ContainElement("Goodbye."))
	})

	It("stays silent on a turn with no speech detected", func() {
		d := newTestDispatcher("unused")
		rec := &speech.Recorder{Transcripts: []string{""}}
		vf := &frontend.VoiceFrontend{
			Dispatcher: d,
			ASR:        rec,
			TTS:        rec,
			Config:     frontend.VoiceConfig{BargeIn: true},
		}

		done, err := vf.RunTurn(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(rec.Spoken).To(BeEmpty())
	})

	It("waits for the configured wake word before listening", func() {
		d := newTestDispatcher("heard you")
		rec := &speech.Recorder{Transcripts: []string{"what time is it"}}
		wake := &wakeword.Scripted{Detections: 1}
		vf := &frontend.VoiceFrontend{
			Dispatcher: d,
			ASR:        rec,
			TTS:        rec,
			Wake:       wake,
		}

		done, err := vf.RunTurn(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(done).To(BeFalse())
		Expect(rec.Spoken).To(HaveLen(1))
	})
})
