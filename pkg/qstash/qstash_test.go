package qstash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"messageId":"msg_1"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Token: "tok"})
	require.NoError(t, err)

	id, err := client.Publish(context.Background(), "https://example.com/hook", map[string]any{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
	assert.Contains(t, gotPath, "/v2/publish/")
	assert.Contains(t, gotPath, "example.com/hook")
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, map[string]any{"id": "1"}, gotBody)
}

func TestPublishErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client := MustNew(Config{URL: srv.URL, Token: "tok"})
	_, err := client.Publish(context.Background(), "https://example.com/hook", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{URL: "https://qstash.upstash.io"})
	require.Error(t, err)
	assert.False(t, Config{}.Configured())
}
