// Package dailyops implements the Daily-Ops Collector (spec §4.7): a
// DAG-backed skill with nodes collect → summarize → write_memory. collect
// fans out four sub-collectors in parallel; a sub-collector's failure
// never fails the DAG, it just contributes empty, noted output.
package dailyops

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Collector gathers one slice of daily-ops input. Grounded on the
// teacher's internal/worker job-source abstraction: a narrow
// single-method interface so each source can be swapped or stubbed
// independently.
type Collector interface {
	Name() string
	Collect(ctx context.Context) (string, error)
}

// collectAll runs every collector and returns one {name: text} result per
// collector; a failing collector contributes a noted empty string instead
// of aborting the others (spec §4.7: "individual sub-collector failures do
// not fail the DAG; their output is empty and noted").
func collectAll(ctx context.Context, collectors []Collector) map[string]string {
	type result struct {
		name string
		text string
	}
	results := make(chan result, len(collectors))

	for _, c := range collectors {
		go func(c Collector) {
			text, err := c.Collect(ctx)
			if err != nil {
				results <- result{name: c.Name(), text: fmt.Sprintf("(unavailable: %v)", err)}
				return
			}
			results <- result{name: c.Name(), text: text}
		}(c)
	}

	out := make(map[string]string, len(collectors))
	for range collectors {
		r := <-results
		out[r.name] = r.text
	}
	return out
}

// TodoCollector scans a directory for TODO/FIXME markers (spec §4.7: "TODO
// scan of a directory").
type TodoCollector struct{ Dir string }

func (c TodoCollector) Name() string { return "todo" }

func (c TodoCollector) Collect(ctx context.Context) (string, error) {
	if c.Dir == "" {
		return "", nil
	}
	var hits []string
	err := filepath.WalkDir(c.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, "TODO") || strings.Contains(line, "FIXME") {
				hits = append(hits, fmt.Sprintf("%s: %s", path, strings.TrimSpace(line)))
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(hits, "\n"), nil
}

// LogTailCollector reads the last N lines of a log file (spec §4.7: "log
// tail").
type LogTailCollector struct {
	Path  string
	Lines int
}

func (c LogTailCollector) Name() string { return "log_tail" }

func (c LogTailCollector) Collect(ctx context.Context) (string, error) {
	if c.Path == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	n := c.Lines
	if n <= 0 {
		n = 50
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n"), nil
}

// SystemEventsCollector and ClusterStatusCollector are stubs in this
// source (spec §9: "several external collaborators in the source are
// stubs... the core's contracts must still hold when those collaborators
// return empty outputs"). Func is set by the embedding application; a nil
// Func degrades to an empty, un-noted result.
type SystemEventsCollector struct{ Func func(ctx context.Context) (string, error) }

func (c SystemEventsCollector) Name() string { return "system_events" }

func (c SystemEventsCollector) Collect(ctx context.Context) (string, error) {
	if c.Func == nil {
		return "", nil
	}
	return c.Func(ctx)
}

type ClusterStatusCollector struct{ Func func(ctx context.Context) (string, error) }

func (c ClusterStatusCollector) Name() string { return "cluster_status" }

func (c ClusterStatusCollector) Collect(ctx context.Context) (string, error) {
	if c.Func == nil {
		return "", nil
	}
	return c.Func(ctx)
}
