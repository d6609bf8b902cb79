package ticket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSeededAndUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, Ticket{ID: "1", Status: "created"}, got)

	_, err = s.Get(ctx, "3")
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = s.Upsert(ctx, Ticket{ID: "3", Status: "new"})
	require.NoError(t, err)
	got, err = s.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Status)

	_, err = s.Upsert(ctx, Ticket{ID: "3"})
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestSeedKeepsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Upsert(ctx, Ticket{ID: "1", Status: "closed"})
	require.NoError(t, err)

	require.NoError(t, Seed(ctx, s, Ticket{ID: "1", Status: "created"}, Ticket{ID: "9", Status: "created"}))

	got, _ := s.Get(ctx, "1")
	assert.Equal(t, "closed", got.Status)
	got, _ = s.Get(ctx, "9")
	assert.Equal(t, "created", got.Status)
}

// fakeUpstash speaks just enough of the Upstash REST protocol for GET and SET.
type fakeUpstash struct {
	mu   sync.Mutex
	data map[string]string
	auth []string
}

func (f *fakeUpstash) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var cmd []string
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil || len(cmd) < 2 {
		http.Error(w, "bad command", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	switch cmd[0] {
	case "GET":
		v, ok := f.data[cmd[1]]
		if !ok {
			_, _ = w.Write([]byte(`{"result":null}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": v})
	case "SET":
		f.data[cmd[1]] = cmd[2]
		_, _ = w.Write([]byte(`{"result":"OK"}`))
	default:
		_, _ = w.Write([]byte(`{"error":"unsupported"}`))
	}
}

func TestUpstashStore(t *testing.T) {
	t.Parallel()

	fake := &fakeUpstash{data: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	store, err := OpenStore(ctx,
		Config{Backend: BackendUpstash, KeyPrefix: "t:"},
		UpstashConfig{URL: srv.URL, Token: "secret"},
	)
	require.NoError(t, err)

	got, err := store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "scheduled", got.Status)

	_, err = store.Upsert(ctx, Ticket{ID: "2", Status: "done"})
	require.NoError(t, err)
	got, err = store.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)

	_, err = store.Get(ctx, "42")
	assert.ErrorIs(t, err, ErrTicketNotFound)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "done", fake.data["t:2"])
	for _, a := range fake.auth {
		assert.Equal(t, "Bearer secret", a)
	}
}

func TestUpstashStoreErrorResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"WRONGTYPE"}`))
	}))
	defer srv.Close()

	store, err := NewUpstashStore(UpstashConfig{URL: srv.URL, Token: "x"})
	require.NoError(t, err)
	_, err = store.Get(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
}

func TestOpenStoreConfigErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := OpenStore(ctx, Config{}, UpstashConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = OpenStore(ctx, Config{Backend: "sqlite"}, UpstashConfig{})
	assert.Error(t, err)

	_, err = OpenStore(ctx, Config{Backend: BackendUpstash}, UpstashConfig{})
	assert.Error(t, err)

	_, err = NewRedisStore("", "")
	assert.Error(t, err)
	_, err = NewRedisStore("not a url", "")
	assert.Error(t, err)

	_, err = NewPostgresStore("  ")
	assert.Error(t, err)
}
