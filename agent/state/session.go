package state

import (
	"errors"
	"strings"
	"sync"
	"time"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the in-memory context of one conversation: its transcript and
// the reasoning steps of every request it has made. It lives only as long
// as the process.
type Session struct {
	mu        sync.Mutex
	id        string
	turns     []Turn
	steps     []contractx.LogEntry
	updatedAt time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{id: id, updatedAt: now.UTC()}
}

func (s *Session) ID() string {
	return s.id
}

// Record appends one request/response exchange and its log entries.
func (s *Session) Record(request, reply string, steps []contractx.LogEntry, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := now.UTC()
	s.turns = append(s.turns,
		Turn{Role: RoleUser, Text: request, At: at},
		Turn{Role: RoleAssistant, Text: reply, At: at},
	)
	s.steps = append(s.steps, steps...)
	s.updatedAt = at
}

func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Steps returns the accumulated reasoning steps, oldest first.
func (s *Session) Steps() []contractx.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]contractx.LogEntry(nil), s.steps...)
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Manager hands out sessions by id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := NewSession(id, m.now())
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, strings.TrimSpace(id))
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
