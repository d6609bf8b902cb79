package tool

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/demo-agent/agent/contract"
)

func TestProxyInvokeSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"echo": body["text"]})
	}))
	defer srv.Close()

	out, err := NewProxy().Invoke(context.Background(), srv.URL, map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"echo": "hi"}, out)
}

func TestProxyInvokeNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	_, err := NewProxy().Invoke(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var remoteErr *contractx.RemoteToolError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusTeapot, remoteErr.StatusCode)
	assert.Equal(t, "short and stout", remoteErr.Body)
	assert.ErrorIs(t, err, contractx.ErrRemoteTool)
	assert.NotErrorIs(t, err, contractx.ErrRemoteUnavailable)
}

func TestProxyInvokeUnavailable(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = NewProxy().Invoke(context.Background(), "http://"+addr+"/tool", nil)
	assert.ErrorIs(t, err, contractx.ErrRemoteUnavailable)
}

func TestProxyInvokeTruncatedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"partial\":")
		_ = buf.Flush()
	}))
	defer srv.Close()

	_, err := NewProxy().Invoke(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, contractx.ErrRemoteUnavailable)
}

func TestProxyInvokeTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewProxy(WithTimeout(50*time.Millisecond)).Invoke(context.Background(), srv.URL, nil)
	assert.ErrorIs(t, err, contractx.ErrRemoteUnavailable)
}

func TestCallRemoteUnwrapsResultKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/simple":
			_, _ = w.Write([]byte(`{"result":"done"}`))
		case "/object":
			_, _ = w.Write([]byte(`{"id":"1","status":"open"}`))
		}
	}))
	defer srv.Close()

	p := NewProxy()
	simple := NewRemote("simple", "", Endpoint{URL: srv.URL + "/simple", ResultKey: "result"})
	out, err := Call(context.Background(), p, simple, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "done", out)

	object := NewRemote("object", "", Endpoint{URL: srv.URL + "/object"})
	out, err = Call(context.Background(), p, object, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "1", "status": "open"}, out)

	wrongShape := NewRemote("wrong", "", Endpoint{URL: srv.URL + "/object", ResultKey: "result"})
	_, err = Call(context.Background(), p, wrongShape, map[string]any{})
	assert.ErrorIs(t, err, contractx.ErrSchemaViolation)
}
