package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mwaltari/cipherduel/internal/client"
)

func TestRESTClient_CreateRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/rooms", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"roomId":"r-42"}`))
	}))
	defer srv.Close()

	c := client.NewRESTClient(srv.URL, time.Second, zaptest.NewLogger(t))
	roomID, err := c.CreateRoom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-42", roomID)
}

func TestRESTClient_CreateRoom_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"server is draining"}`))
	}))
	defer srv.Close()

	c := client.NewRESTClient(srv.URL, time.Second, zaptest.NewLogger(t))
	_, err := c.CreateRoom(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server is draining")
}

func TestRESTClient_CreateRoom_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.NewRESTClient(srv.URL, time.Second, zaptest.NewLogger(t))
	_, err := c.CreateRoom(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRESTClient_Health(t *testing.T) {
	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := client.NewRESTClient(srv.URL, time.Second, zaptest.NewLogger(t))
	assert.NoError(t, c.Health(context.Background()))

	healthy = false
	err := c.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
