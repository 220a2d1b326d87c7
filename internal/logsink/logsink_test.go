package logsink

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
)

// lockedBuffer guards a bytes.Buffer so the test itself is race-free; the
// sink must still serialize lines, which is what the assertions check.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestEntriesAreCompleteLines(t *testing.T) {
	var buf lockedBuffer
	sink := New(&buf)

	sink.Error("SocketError", "accept failed", map[string]any{"port": 7878}, nil)
	sink.Info("startup", "listening", nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("line is not valid JSON: %v (%q)", err, line)
		}
		if e.Time == "" || e.Tag == "" {
			t.Fatalf("entry missing time or tag: %q", line)
		}
	}
}

func TestConcurrentWritersDoNotInterleave(t *testing.T) {
	var buf lockedBuffer
	sink := New(&buf)

	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				sink.Error("WriteError", "boom", nil, nil)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("expected %d lines, got %d", writers*perWriter, len(lines))
	}
	for _, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("interleaved partial line: %q", line)
		}
	}
}

func TestLevelFilter(t *testing.T) {
	var buf lockedBuffer
	sink := New(&buf)
	sink.minLevel = LevelError

	sink.Info("startup", "ignored", nil)
	sink.Error("Internal", "kept", nil, nil)

	if got := buf.String(); strings.Contains(got, "ignored") || !strings.Contains(got, "kept") {
		t.Fatalf("level filter not applied: %q", got)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	var sink *Sink
	sink.Error("Internal", "no panic expected", nil, nil)
}
