package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolygon(t *testing.T, handler http.HandlerFunc) *PolygonProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPolygonProvider("secret")
	p.SetBaseURL(srv.URL)
	return p
}

func TestPolygonFetchDaily(t *testing.T) {
	var paths []string
	p := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("cursor") == "" {
			assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
			assert.Equal(t, "asc", r.URL.Query().Get("sort"))
			fmt.Fprintf(w, `{"status":"OK","ticker":"I:SPX","results":[
				{"t":1709528400000,"o":5100,"h":5130,"l":5090,"c":5120.5,"v":3.1e9}
			],"next_url":"http://%s/v2/aggs/ticker/I:SPX/range/1/day/1709510400000/1709596800000?cursor=abc"}`, r.Host)
			return
		}
		fmt.Fprint(w, `{"status":"DELAYED","results":[{"t":1709614800000,"o":5120,"h":5125,"l":5050,"c":5078.65,"v":2800000000}]}`)
	})

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	bars, err := p.FetchDaily(context.Background(), "^GSPC", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	require.Len(t, paths, 2, "next_url is followed")
	assert.True(t, strings.HasPrefix(paths[0], "/v2/aggs/ticker/I:SPX/range/1/day/"), paths[0])
	assert.Equal(t, 5120.5, bars[0].Close)
	assert.Equal(t, int64(3100000000), bars[0].Volume)
	assert.Equal(t, time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 5078.65, bars[1].Close)
}

func TestPolygonErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"rate limited", http.StatusTooManyRequests, `{"status":"ERROR","error":"slow down"}`, func(t *testing.T, err error) {
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.True(t, se.Retryable())
			var perm *backoff.PermanentError
			assert.False(t, errors.As(classify(err), &perm), "rate limits stay retryable")
		}},
		{"server error", http.StatusBadGateway, `{"status":"ERROR"}`, func(t *testing.T, err error) {
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.True(t, se.Retryable())
		}},
		{"forbidden", http.StatusForbidden, `{"status":"NOT_AUTHORIZED"}`, func(t *testing.T, err error) {
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, http.StatusForbidden, se.Code)
			assert.False(t, se.Retryable())
			var perm *backoff.PermanentError
			assert.True(t, errors.As(classify(err), &perm))
		}},
		{"empty results", http.StatusOK, `{"status":"OK","results":[]}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrNoData)
		}},
		{"bad json", http.StatusOK, `{`, func(t *testing.T, err error) {
			var se *StatusError
			assert.False(t, errors.As(err, &se))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPolygon(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := p.FetchDaily(context.Background(), "AAPL", time.Now().AddDate(0, 0, -5), time.Now())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
