// Package logging provides leveled logging and decision tracing for crosswalk.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (per-turn progress, per-agent trace)
//   - A DecisionLogger for structured JSONL traces of swap negotiations and
//     removals (.crosswalk/decisions.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level the engine
// logs every individual agent decision.
const LevelTrace = slog.LevelDebug - 4

// DecisionFile is the name of the JSONL decision trace.
const DecisionFile = "decisions.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// DecisionLogger writes structured decision events as JSONL.
// It is safe for concurrent use. A nil DecisionLogger is safe to use;
// all methods are no-ops on nil receiver.
type DecisionLogger struct {
	mu  sync.Mutex
	out io.Writer
	c   io.Closer
	now func() time.Time
}

// NewDecisionLogger creates a decision logger writing to dir/decisions.jsonl.
// At "info" level (the default) it returns nil and no file is created.
// At "debug" or "trace" level the file is opened for append.
// Returns nil if the file cannot be opened.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, DecisionFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &DecisionLogger{out: f, c: f, now: time.Now}
}

// NewDecisionWriter creates a decision logger over an arbitrary writer.
// Close does not close w.
func NewDecisionWriter(w io.Writer) *DecisionLogger {
	return &DecisionLogger{out: w, now: time.Now}
}

// Log writes one event as a single JSONL line. The "event" and "time" fields
// are added automatically; the caller's map is not mutated.
func (dl *DecisionLogger) Log(event string, fields map[string]any) {
	if dl == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["time"] = dl.now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.out == nil {
		return
	}
	_, _ = dl.out.Write(data)
}

// Close closes the underlying file, if the logger owns one.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if dl.c != nil {
		dl.c.Close()
	}
	dl.out = nil
	dl.c = nil
}
