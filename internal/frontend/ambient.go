// Package frontend implements the three ways a TaskContext reaches the
// Task Dispatcher outside of a direct API call (spec §4.6): an ambient
// ticker, a hotkey manager, and a voice loop.
package frontend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kadai-ai/kadai/internal/dispatcher"
)

// AmbientMonitor fires a fixed task on an interval without returning
// results to any caller; it only observes the dispatcher's write-back
// into memory/thread/graph. Grounded on internal/worker's periodic
// reclaim-loop shape (ticker + cancellable stop).
type AmbientMonitor struct {
	Dispatcher *dispatcher.Dispatcher
	Task       string
	Interval   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the ticker loop in the background. Calling Start twice
// before Stop is a no-op on the second call.
func (m *AmbientMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	interval := m.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				m.tick(runCtx)
			}
		}
	}()
}

func (m *AmbientMonitor) tick(ctx context.Context) {
	_, err := m.Dispatcher.Dispatch(ctx, dispatcher.TaskContext{
		Utterance: m.Task,
		Source:    dispatcher.SourceAmbient,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ambient monitor tick failed", "task", m.Task, "error", err)
	}
}

// Stop cancels the loop and waits for it to exit.
func (m *AmbientMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
