package shortener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShorten(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "https://long.example.com/a/b", body["url"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"tiny_url":"https://tinyurl.com/xyz"}}`))
	}))
	defer srv.Close()

	c := New("test-key")
	c.Endpoint = srv.URL

	short, err := c.Shorten(context.Background(), "https://long.example.com/a/b")
	require.NoError(t, err)
	require.Equal(t, "https://tinyurl.com/xyz", short)
}

func TestShorten_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-key")
	c.Endpoint = srv.URL

	_, err := c.Shorten(context.Background(), "https://long.example.com")
	require.Error(t, err)
}

func TestShorten_EmptyAlias(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := New("test-key")
	c.Endpoint = srv.URL

	_, err := c.Shorten(context.Background(), "https://long.example.com")
	require.Error(t, err)
}

func TestEnabled(t *testing.T) {
	require.False(t, New("").Enabled())
	require.True(t, New("key").Enabled())
}
