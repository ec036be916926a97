package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bangumi/internal/fetcher"
)

type payload struct {
	Total int `json:"total"`
}

func TestFetchSendsHeadersAndOrderedParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fetcher.DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "subject_type=2&limit=100&offset=0", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":7}`))
	}))
	t.Cleanup(server.Close)

	client := fetcher.New()
	got, err := fetcher.Get[payload](context.Background(), client, server.URL+"/collections", fetcher.Params{
		{Key: "subject_type", Value: 2},
		{Key: "limit", Value: 100},
		{Key: "offset", Value: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.Total)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	var out payload
	err := fetcher.New().Fetch(context.Background(), server.URL+"/missing", nil, &out)
	require.Error(t, err)

	var statusErr *fetcher.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, server.URL+"/missing", statusErr.URL)
}

func TestFetchInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	t.Cleanup(server.Close)

	var out payload
	assert.Error(t, fetcher.New().Fetch(context.Background(), server.URL, nil, &out))
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	var out payload
	assert.Error(t, fetcher.New(fetcher.WithTimeout(time.Second)).Fetch(context.Background(), addr, nil, &out))
}

func TestBuildURLKeepsExistingQuery(t *testing.T) {
	got, err := fetcher.BuildURL("https://example.com/a?x=1", fetcher.Params{{Key: "name", Value: "a b"}})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?x=1&name=a+b", got)

	got, err = fetcher.BuildURL("https://example.com/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got)
}

func TestWithRetryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"total":1}`))
	}))
	t.Cleanup(server.Close)

	getter := fetcher.WithRetry(fetcher.New(), 3, time.Millisecond)
	got, err := fetcher.Get[payload](context.Background(), getter, server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	getter := fetcher.WithRetry(fetcher.New(), 3, time.Millisecond)
	var out payload
	err := getter.Fetch(context.Background(), server.URL, nil, &out)

	var statusErr *fetcher.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.EqualValues(t, 1, calls.Load())
}

func TestWithRetryZeroIsPassthrough(t *testing.T) {
	client := fetcher.New()
	assert.Same(t, client, fetcher.WithRetry(client, 0, 0))
}
