package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/nvandessel/crosswalk/internal/store"
)

// AuditFile is the tool invocation log inside .crosswalk.
const AuditFile = "audit.jsonl"

// AuditEntry records one MCP tool invocation. Paths supplied by the client
// are logged by presence only.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends entries to <root>/.crosswalk/audit.jsonl. It is safe
// for concurrent use. A nil AuditLogger is safe to use; all methods are
// no-ops on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens the audit log under root. If the file cannot be
// created a warning is printed to stderr and nil is returned.
func NewAuditLogger(root string) *AuditLogger {
	dir := store.LocalDir(root)
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, AuditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}
	return &AuditLogger{file: f}
}

// Log appends entry as one JSON line.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return
	}
	_, _ = a.file.Write(append(data, '\n'))
}

// Close closes the log file. Further Log calls are dropped.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// sanitizeToolParams keeps numeric and boolean parameters and reduces
// everything that may hold a path to "(set)". Zero values count as unset
// and unknown keys are dropped.
func sanitizeToolParams(params map[string]any) map[string]string {
	safeValueParams := map[string]bool{
		"turns":           true,
		"seed":            true,
		"width":           true,
		"height":          true,
		"archive":         true,
		"stop_when_empty": true,
		"limit":           true,
		"turn":            true,
		"run_id":          true,
	}
	presenceOnlyParams := map[string]bool{
		"scenario":       true,
		"trajectory_csv": true,
	}

	result := make(map[string]string)
	set := 0
	for key, val := range params {
		if val == nil || reflect.ValueOf(val).IsZero() {
			continue
		}
		set++
		switch {
		case safeValueParams[key]:
			result[key] = fmt.Sprintf("%v", val)
		case presenceOnlyParams[key]:
			result[key] = "(set)"
		}
	}
	result["_param_count"] = fmt.Sprintf("%d", set)
	return result
}

// auditTool logs a tool invocation.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]string) {
	entry := AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     "success",
		Params:     params,
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	s.auditLogger.Log(entry)
}
