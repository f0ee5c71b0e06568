package dispatcher

import (
	"sync"
	"time"

	"github.com/kadai-ai/kadai/common/llm"
)

// evalRingCapacity bounds the in-memory eval log so a long-running
// dispatcher doesn't grow it unbounded.
const evalRingCapacity = 256

// LLMEvalRecord captures one structured LLM call for offline quality
// tracking (supplemented feature, grounded on
// internal/brain/keywords.go's logEval: prompt, output, and whether the
// call errored). recordEval does not measure latency, so Latency is zero.
type LLMEvalRecord struct {
	Phase     string // "ambiguity_precheck" or "route"
	Prompt    string
	Output    string
	Err       string
	Latency   time.Duration
	Timestamp time.Time
}

// evalRing is a fixed-capacity, thread-safe ring buffer of LLMEvalRecords.
type evalRing struct {
	mu      sync.Mutex
	records []LLMEvalRecord
	next    int
	full    bool
}

func newEvalRing() *evalRing {
	return &evalRing{records: make([]LLMEvalRecord, evalRingCapacity)}
}

func (r *evalRing) append(rec LLMEvalRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next = (r.next + 1) % len(r.records)
	if r.next == 0 {
		r.full = true
	}
}

// Records returns the ring's contents in chronological order.
func (r *evalRing) Records() []LLMEvalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]LLMEvalRecord, r.next)
		copy(out, r.records[:r.next])
		return out
	}
	out := make([]LLMEvalRecord, len(r.records))
	copy(out, r.records[r.next:])
	copy(out[len(r.records)-r.next:], r.records[:r.next])
	return out
}

func (d *Dispatcher) recordEval(phase, prompt string, resp *llm.AgentResponse, err error) {
	if d.Evals == nil {
		return
	}
	rec := LLMEvalRecord{Phase: phase, Prompt: prompt, Timestamp: time.Now()}
	if err != nil {
		rec.Err = err.Error()
	} else if resp != nil {
		rec.Output = resp.Content
	}
	d.Evals.append(rec)
}

// EvalLog exposes the dispatcher's eval records (consumed by the `repo
// --evals` CLI flag).
func (d *Dispatcher) EvalLog() []LLMEvalRecord {
	if d.Evals == nil {
		return nil
	}
	return d.Evals.Records()
}
