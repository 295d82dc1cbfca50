package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimClient_ReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "39.000000", r.URL.Query().Get("lat"))
		assert.Equal(t, "-104.000000", r.URL.Query().Get("lon"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"El Paso County, Colorado, United States"}`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, 5*time.Second)
	name, err := c.ReverseGeocode(context.Background(), 39.0, -104.0)
	require.NoError(t, err)
	assert.Equal(t, "El Paso County, Colorado, United States", name)
}

func TestNominatimClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, 5*time.Second)
	_, err := c.ReverseGeocode(context.Background(), 39.0, -104.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestElevationClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/lookup", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"latitude":39.0,"longitude":-104.0,"elevation":2133.0}]}`))
	}))
	defer srv.Close()

	c := NewElevationClient(srv.URL, 5*time.Second)
	alt, err := c.Lookup(context.Background(), 39.0, -104.0)
	require.NoError(t, err)
	assert.Equal(t, 2133.0, alt)
}

func TestElevationClient_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewElevationClient(srv.URL, 5*time.Second)
	_, err := c.Lookup(context.Background(), 39.0, -104.0)
	require.Error(t, err)
}

func TestCachedElevationClient_SecondLookupIsCached(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"elevation":2133.0}]}`))
	}))
	defer srv.Close()

	c := NewCachedElevationClient(NewElevationClient(srv.URL, 5*time.Second), 8)

	for i := 0; i < 3; i++ {
		alt, err := c.Lookup(context.Background(), 39.0, -104.0)
		require.NoError(t, err)
		assert.Equal(t, 2133.0, alt)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestCachedElevationClient_Eviction(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"elevation":100.0}]}`))
	}))
	defer srv.Close()

	c := NewCachedElevationClient(NewElevationClient(srv.URL, 5*time.Second), 2)

	_, err := c.Lookup(context.Background(), 1.0, 1.0)
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), 2.0, 2.0)
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), 3.0, 3.0) // evicts (1,1)
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), 1.0, 1.0)
	require.NoError(t, err)

	assert.Equal(t, int64(4), atomic.LoadInt64(&calls))
}
