// Package logsink provides the append-only structured event sink used by
// every component of the server. One JSON line per event, no rotation.
package logsink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Entry is a single structured log line.
type Entry struct {
	Level  Level          `json:"level"`
	Time   string         `json:"time"`
	Tag    string         `json:"tag"`
	Detail string         `json:"detail,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Sink appends structured events to a writer. Writes are serialized so
// concurrent callers never interleave partial lines.
type Sink struct {
	mu       sync.Mutex
	out      io.Writer
	file     *os.File
	minLevel Level
}

// Open creates a sink backed by an append-only file at path. The file is
// created if it does not exist and is never truncated or rotated.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Sink{out: f, file: f, minLevel: minLevelFromEnv()}, nil
}

// New creates a sink writing to w. Used by tests and for stderr mirroring.
func New(w io.Writer) *Sink {
	return &Sink{out: w, minLevel: minLevelFromEnv()}
}

func minLevelFromEnv() Level {
	switch os.Getenv("FILEHOST_LOG_LEVEL") {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (s *Sink) shouldLog(level Level) bool {
	return levelRank[level] >= levelRank[s.minLevel]
}

func (s *Sink) log(level Level, tag, detail string, fields map[string]any, err error) {
	if s == nil || !s.shouldLog(level) {
		return
	}

	entry := Entry{
		Level:  level,
		Time:   time.Now().UTC().Format(time.RFC3339),
		Tag:    tag,
		Detail: detail,
		Fields: fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, merr := json.Marshal(entry)
	if merr != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.out.Write(data)
}

// Debug logs a debug event.
func (s *Sink) Debug(tag, detail string, fields map[string]any) {
	s.log(LevelDebug, tag, detail, fields, nil)
}

// Info logs an informational event.
func (s *Sink) Info(tag, detail string, fields map[string]any) {
	s.log(LevelInfo, tag, detail, fields, nil)
}

// Warn logs a warning event.
func (s *Sink) Warn(tag, detail string, fields map[string]any) {
	s.log(LevelWarn, tag, detail, fields, nil)
}

// Error logs an error event. tag names the error category.
func (s *Sink) Error(tag, detail string, fields map[string]any, err error) {
	s.log(LevelError, tag, detail, fields, err)
}

// Close flushes and closes the underlying file, if any.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
