package executor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

// Log is the append-only execution log of a single request. Entries are
// appended whole under a mutex, so readers never see a partial record.
type Log struct {
	mu        sync.Mutex
	requestID string
	entries   []contractx.LogEntry
	observer  func(contractx.LogEntry)
}

func NewLog(requestID string) *Log {
	return &Log{requestID: requestID}
}

func (l *Log) RequestID() string {
	return l.requestID
}

// Observe registers fn to be called after each append.
func (l *Log) Observe(fn func(contractx.LogEntry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = fn
}

func (l *Log) Append(label string, d time.Duration, failed bool) contractx.LogEntry {
	if d < 0 {
		d = 0
	}
	entry := contractx.LogEntry{
		RequestID: l.requestID,
		Label:     label,
		Duration:  d,
		Failed:    failed,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	observer := l.observer
	l.mu.Unlock()

	if observer != nil {
		observer(entry)
	}
	return entry
}

// Entries returns a snapshot in completion order.
func (l *Log) Entries() []contractx.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]contractx.LogEntry(nil), l.entries...)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Since returns the entries appended after the first n.
func (l *Log) Since(n int) []contractx.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return []contractx.LogEntry{}
	}
	return append([]contractx.LogEntry(nil), l.entries[n:]...)
}

// Format renders entries one per line as "label: 0.12s".
func Format(entries []contractx.LogEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s: %.2fs", e.Label, e.DurationSeconds())
		if e.Failed {
			line += " (failed)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
