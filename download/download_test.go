package download_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jetsonhacks/install-deep-stream/download"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("deb contents"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "downloads", "package.deb")
	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond))
	require.NoError(t, fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "deb contents", string(data))
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchSkipsExisting(t *testing.T) {
	var gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		_, _ = w.Write([]byte("deb contents"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "package.deb")
	require.NoError(t, os.WriteFile(dest, []byte("deb contents"), 0o644))

	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond))
	require.NoError(t, fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest))
	assert.Zero(t, gets.Load(), "matching existing file should not be re-downloaded")
}

func TestFetchReplacesMismatchedExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("deb contents"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "package.deb")
	require.NoError(t, os.WriteFile(dest, []byte("stale partial"), 0o644))

	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond))
	require.NoError(t, fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "deb contents", string(data))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("deb contents"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "package.deb")
	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond))
	require.NoError(t, fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest))
	assert.Equal(t, int32(3), requests.Load())
}

func TestFetchNotFoundDoesNotRetry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "package.deb")
	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond))
	err := fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest)
	require.ErrorIs(t, err, download.ErrDownload)
	assert.Equal(t, int32(1), requests.Load())

	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "no partial file may remain")
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "package.deb")
	fetcher := download.NewFetcher(download.WithRetryDelay(time.Millisecond), download.WithMaxRetries(2))
	err := fetcher.Fetch(context.Background(), server.URL+"/package.deb", dest)
	require.ErrorIs(t, err, download.ErrDownload)
	assert.Equal(t, int32(2), requests.Load())
}
