// Package download fetches files over HTTP with retries and an optional
// progress display.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/jetsonhacks/install-deep-stream/retry"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ErrDownload is returned when a file can't be fetched.
var ErrDownload = errors.New("download failed")

// Fetcher downloads files to the local filesystem. Downloads go to a
// temporary file that is renamed into place on success, so an interrupted
// download never leaves a partial file at the destination.
type Fetcher struct {
	log.LoggerInjectable

	client     *http.Client
	maxRetries int
	delay      time.Duration
	progressTo *os.File
}

// Option is a functional option for a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client used for downloads.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithMaxRetries sets how many attempts a download gets before giving up.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithRetryDelay sets the base delay between download attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithProgressTo sets the file the progress bar is drawn on. Progress is
// only shown when the file is a terminal. The default is stderr.
func WithProgressTo(f *os.File) Option {
	return func(fe *Fetcher) {
		fe.progressTo = f
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:     http.DefaultClient,
		maxRetries: 3,
		delay:      5 * time.Second,
		progressTo: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url to dest. When dest already exists with the same size
// as the remote file, the download is skipped, which makes re-running a
// download step after an interrupted run cheap.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if ok, err := f.upToDate(ctx, url, dest); err == nil && ok {
		f.Log().Info("already downloaded, skipping", log.KeyURL, url, log.KeyFile, dest)
		return nil
	}

	err := retry.DoWithContext(ctx, func(ctx context.Context) error {
		return f.fetchOnce(ctx, url, dest)
	}, retry.MaxRetries(f.maxRetries), retry.Delay(f.delay), retry.Backoff(2.0))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}
	return nil
}

// upToDate reports whether dest already holds a file of the remote's size.
func (f *Fetcher) upToDate(ctx context.Context, url, dest string) (bool, error) {
	info, err := os.Stat(dest)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.ContentLength <= 0 {
		return false, nil
	}
	return resp.ContentLength == info.Size(), nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", retry.ErrAbort, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// a client error won't get better by retrying
		return fmt.Errorf("%w: server responded with %s", retry.ErrAbort, resp.Status)
	default:
		return fmt.Errorf("server responded with %s", resp.Status)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create destination directory: %w", retry.ErrAbort, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.partial")
	if err != nil {
		return fmt.Errorf("%w: create temporary file: %w", retry.ErrAbort, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	f.Log().Info("downloading", log.KeyURL, url, log.KeyFile, dest)
	var out io.Writer = tmp
	if f.progressTo != nil && term.IsTerminal(int(f.progressTo.Fd())) {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(dest))
		defer func() { _ = bar.Close() }()
		out = io.MultiWriter(tmp, bar)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("%w: move download into place: %w", retry.ErrAbort, err)
	}
	return nil
}
