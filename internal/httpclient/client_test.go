package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coreErrors "github.com/angelospk/osdbclient/pkg/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/xml-rpc", r.URL.Path)
		assert.Equal(t, "text/xml", r.Header.Get("Content-Type"))
		assert.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "<methodCall/>", string(body))

		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte("<methodResponse/>"))
	}))
	defer server.Close()

	client := New(server.URL+"/xml-rpc", "TestAgent/1.0", server.Client(), 0)
	resp, err := client.Post(context.Background(), []byte("<methodCall/>"))

	require.NoError(t, err)
	assert.Equal(t, "<methodResponse/>", string(resp))
	assert.Equal(t, server.URL+"/xml-rpc", client.Endpoint())
}

func TestPost_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	client := New(server.URL, "TestAgent/1.0", nil, time.Second)
	resp, err := client.Post(context.Background(), []byte("<methodCall/>"))

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, coreErrors.ErrTransport)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestPost_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(url, "", nil, time.Second)
	_, err := client.Post(context.Background(), []byte("<methodCall/>"))

	require.Error(t, err)
	assert.ErrorIs(t, err, coreErrors.ErrTransport)
}

func TestPost_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(server.URL, "", nil, 0)
	_, err := client.Post(ctx, []byte("<methodCall/>"))

	require.Error(t, err)
	assert.ErrorIs(t, err, coreErrors.ErrTransport)
	assert.True(t, errors.Is(err, context.Canceled))
}
