package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

func TestManagerGet(t *testing.T) {
	t.Parallel()

	m := NewManager()
	if _, err := m.Get("  "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	a, err := m.Get("s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	b, _ := m.Get(" s1 ")
	if a != b {
		t.Fatal("expected the same session for the same id")
	}
	if m.Len() != 1 {
		t.Fatalf("unexpected session count: %d", m.Len())
	}

	m.Delete("s1")
	if m.Len() != 0 {
		t.Fatalf("session should be gone, count=%d", m.Len())
	}
}

func TestSessionRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSession("s1", now)
	steps := []contractx.LogEntry{{RequestID: "r1", Label: "clean_text", Duration: time.Millisecond}}

	s.Record("clean this", "done", steps, now.Add(time.Minute))

	turns := s.Turns()
	if len(turns) != 2 || turns[0].Role != RoleUser || turns[1].Role != RoleAssistant {
		t.Fatalf("unexpected turns: %+v", turns)
	}
	if turns[1].Text != "done" {
		t.Fatalf("unexpected reply: %q", turns[1].Text)
	}
	if got := s.Steps(); len(got) != 1 || got[0].Label != "clean_text" {
		t.Fatalf("unexpected steps: %+v", got)
	}
	if !s.UpdatedAt().Equal(now.Add(time.Minute)) {
		t.Fatalf("unexpected updated at: %v", s.UpdatedAt())
	}

	turns[0].Text = "mutated"
	if s.Turns()[0].Text != "clean this" {
		t.Fatal("Turns() must return a copy")
	}
}

func TestSessionConcurrentRecord(t *testing.T) {
	t.Parallel()

	s := NewSession("s1", time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record("q", "a", nil, time.Now())
		}()
	}
	wg.Wait()

	if got := len(s.Turns()); got != 40 {
		t.Fatalf("expected 40 turns, got %d", got)
	}
}
