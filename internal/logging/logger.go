// Package logging provides leveled logging and run tracing for indecision.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLogger writing one JSON line per recorded tick (trace.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ParseLevel maps a level name to a slog.Level. Unknown values default to
// info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TraceLogger writes tick records to a JSONL file. A nil TraceLogger is
// safe to use; all methods are no-ops on a nil receiver.
type TraceLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// TickRecord is one line of a trace.
type TickRecord struct {
	Run   string  `json:"run"`
	Step  int     `json:"step"`
	Time  float64 `json:"time"`
	Theta float64 `json:"theta"`
}

// NewTraceLogger opens dir/trace.jsonl for append when level is debug.
// At any other level, or if the file cannot be opened, it returns nil.
func NewTraceLogger(dir, level string) *TraceLogger {
	if ParseLevel(level) != slog.LevelDebug {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, "trace.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return &TraceLogger{file: f, enc: json.NewEncoder(f)}
}

func (tl *TraceLogger) Log(rec TickRecord) {
	if tl == nil || tl.file == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	_ = tl.enc.Encode(rec)
}

func (tl *TraceLogger) Close() {
	if tl == nil || tl.file == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.file.Close()
	tl.file = nil
}
