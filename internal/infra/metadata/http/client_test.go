package http

import (
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/herowatch/herowatch/internal/hero"
	"github.com/herowatch/herowatch/internal/pkg/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *client {
	// no retry pauses inside tests
	return NewClient(baseURL, http.WithRetryMax(0))
}

func TestClient_Fetch(t *testing.T) {
	t.Run("decodes a metadata document", func(t *testing.T) {
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Equal(t, "/heroes/42", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"name": "Hero #42",
				"image": "https://cdn.example.com/heroes/42.png",
				"attributes": [{"trait_type": "Season 1 Level", "value": 1}]
			}`)
		}))
		defer server.Close()

		c := newTestClient(server.URL + "/heroes/")

		metadata, err := c.Fetch(t.Context(), 42)
		require.NoError(t, err)

		assert.Equal(t, "Hero #42", metadata.Name)
		assert.Equal(t, "https://cdn.example.com/heroes/42.png", metadata.Image)
		require.Len(t, metadata.Attributes, 1)
		assert.Equal(t, "Season 1 Level", metadata.Attributes[0].TraitType)
	})

	t.Run("non-2xx status is a plain error", func(t *testing.T) {
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusNotFound)
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Fetch(t.Context(), 42)
		require.Error(t, err)
		assert.NotErrorIs(t, err, hero.ErrMalformedMetadata)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("undecodable body is malformed metadata", func(t *testing.T) {
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			fmt.Fprint(w, `<html>not json</html>`)
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Fetch(t.Context(), 42)
		assert.ErrorIs(t, err, hero.ErrMalformedMetadata)
	})

	t.Run("missing image reference is malformed metadata", func(t *testing.T) {
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			fmt.Fprint(w, `{"name": "Hero #42"}`)
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Fetch(t.Context(), 42)
		assert.ErrorIs(t, err, hero.ErrMalformedMetadata)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {}))
		server.Close()

		c := newTestClient(server.URL)

		_, err := c.Fetch(t.Context(), 42)
		require.Error(t, err)
		assert.NotErrorIs(t, err, hero.ErrMalformedMetadata)
	})
}
