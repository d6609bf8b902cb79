package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidTicket  = errors.New("invalid ticket")
)

type Ticket struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (t Ticket) validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidTicket)
	}
	if strings.TrimSpace(t.Status) == "" {
		return fmt.Errorf("%w: status is empty", ErrInvalidTicket)
	}
	return nil
}

// Store persists ticket status. Upsert creates unknown tickets.
type Store interface {
	Get(ctx context.Context, id string) (Ticket, error)
	Upsert(ctx context.Context, t Ticket) (Ticket, error)
}

// DefaultTickets is the data every fresh store starts with.
func DefaultTickets() []Ticket {
	return []Ticket{
		{ID: "1", Status: "created"},
		{ID: "2", Status: "scheduled"},
	}
}

// Seed writes tickets that are not present yet. Existing rows keep their
// status.
func Seed(ctx context.Context, s Store, tickets ...Ticket) error {
	if len(tickets) == 0 {
		tickets = DefaultTickets()
	}
	for _, t := range tickets {
		_, err := s.Get(ctx, t.ID)
		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrTicketNotFound):
			if _, err := s.Upsert(ctx, t); err != nil {
				return fmt.Errorf("seed ticket %s: %w", t.ID, err)
			}
		default:
			return fmt.Errorf("seed ticket %s: %w", t.ID, err)
		}
	}
	return nil
}

type MemoryStore struct {
	mu      sync.RWMutex
	tickets map[string]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding DefaultTickets.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{tickets: make(map[string]string)}
	for _, t := range DefaultTickets() {
		s.tickets[t.ID] = t.Status
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.tickets[id]
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return Ticket{ID: id, Status: status}, nil
}

func (s *MemoryStore) Upsert(_ context.Context, t Ticket) (Ticket, error) {
	if err := t.validate(); err != nil {
		return Ticket{}, err
	}
	s.mu.Lock()
	s.tickets[t.ID] = t.Status
	s.mu.Unlock()
	return t, nil
}
