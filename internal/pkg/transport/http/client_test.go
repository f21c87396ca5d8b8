package http

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client := NewClient()

		assert.Equal(t, 10*time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, time.Second, client.RetryWaitMin)
		assert.Equal(t, 5*time.Second, client.RetryWaitMax)
		assert.Equal(t, 2, client.RetryMax)
		assert.Nil(t, client.Logger)
	})

	t.Run("options override the defaults", func(t *testing.T) {
		client := NewClient(
			WithTimeout(time.Second),
			WithRetryWaitMin(10*time.Millisecond),
			WithRetryWaitMax(20*time.Millisecond),
			WithRetryMax(5),
		)

		assert.Equal(t, time.Second, client.HTTPClient.Timeout)
		assert.Equal(t, 10*time.Millisecond, client.RetryWaitMin)
		assert.Equal(t, 20*time.Millisecond, client.RetryWaitMax)
		assert.Equal(t, 5, client.RetryMax)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(
			WithRetryWaitMin(time.Millisecond),
			WithRetryWaitMax(5*time.Millisecond),
			WithRetryMax(3),
		)

		req, err := retryablehttp.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), hits.Load())
	})
}
