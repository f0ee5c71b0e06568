package dispatcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kadai-ai/kadai/internal/memory"
	"github.com/kadai-ai/kadai/internal/thread"
)

const defaultProject = "default"

// writeBack implements spec §4.4 step 5: "regardless of outcome, write a
// MemoryItem{kind: TASK_RESULT} summarizing the call. Attach a thread
// entry (creating the thread if needed) and ingest it into the knowledge
// graph." Exactly one MemoryItem and one ThreadEntry are produced per
// call (spec §8 invariant), and the entry references the item's id.
func (d *Dispatcher) writeBack(ctx context.Context, tc TaskContext, utterance string, result TaskResult) TaskResult {
	project := defaultProject
	if p, ok := tc.Metadata["project"].(string); ok && p != "" {
		project = p
	}

	memID, err := d.Memory.Add(ctx, memory.Item{
		Kind: memory.KindTaskResult,
		Text: fmt.Sprintf("%s -> %s", utterance, result.Summary),
		Tags: map[string]struct{}{string(tc.Source): {}},
		Metadata: map[string]any{
			"status": string(result.Status),
			"source": string(tc.Source),
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "dispatcher write-back: memory add failed", "error", err)
	}

	t, err := d.Threads.FindByProject(ctx, project)
	if err != nil {
		t, err = d.Threads.Create(ctx, project, project)
	}
	if err != nil {
		slog.ErrorContext(ctx, "dispatcher write-back: thread create failed", "error", err)
		return result
	}
	result.ThreadID = t.ID

	var refs []thread.Ref
	if memID != "" {
		refs = append(refs, thread.Ref{Kind: "memory_item", ID: memID})
	}

	if _, err := d.Threads.AddEntry(ctx, t.ID, thread.EntrySkillResult, result.Summary, refs); err != nil {
		slog.ErrorContext(ctx, "dispatcher write-back: thread entry failed", "error", err)
		return result
	}

	updated, err := d.Threads.Get(ctx, t.ID)
	if err != nil {
		return result
	}
	if d.Graph != nil {
		if err := d.Graph.IngestThread(ctx, t.ID, updated.Title, updated.Entries); err != nil {
			slog.ErrorContext(ctx, "dispatcher write-back: graph ingest failed", "error", err)
		}
	}

	return result
}
