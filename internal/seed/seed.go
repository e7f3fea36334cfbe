// Package seed downloads the public Nobel prize dataset into a local
// prize document.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alfredjeanlab/nobel/internal/store/jsonfile"
)

// DefaultURL is the Nobel Prize API v1 prize listing.
const DefaultURL = "https://api.nobelprize.org/v1/prize.json"

// maxBodyBytes caps the downloaded document.
const maxBodyBytes = 64 << 20

// Fetcher downloads the dataset. The zero value is usable.
type Fetcher struct {
	// Client is the HTTP client; http.DefaultClient with a 30s timeout when nil.
	Client *http.Client
	// Retries is the number of extra attempts after a failure.
	Retries int
	// Backoff is the wait between attempts.
	Backoff time.Duration
	Logger  *slog.Logger
}

// Default returns a Fetcher that retries once after one second.
func Default() *Fetcher {
	return &Fetcher{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Retries: 1,
		Backoff: time.Second,
		Logger:  slog.Default(),
	}
}

// Fetch downloads url with the default fetcher and writes it to path.
func Fetch(ctx context.Context, url, path string) (int, error) {
	return Default().Fetch(ctx, url, path)
}

// Fetch downloads url, checks that it decodes as a prize document, and
// writes it to path. It returns the number of prizes written. path is only
// replaced once a download succeeds.
func (f *Fetcher) Fetch(ctx context.Context, url, path string) (int, error) {
	var lastErr error
	for attempt := 0; attempt <= f.Retries; attempt++ {
		if attempt > 0 {
			f.logger().Warn("seed download failed, retrying", "url", url, "attempt", attempt, "err", lastErr)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(f.Backoff):
			}
		}
		data, err := f.download(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		prizes, err := jsonfile.DecodeDocument(data)
		if err != nil {
			lastErr = err
			continue
		}
		if err := jsonfile.WriteDocument(path, prizes); err != nil {
			return 0, fmt.Errorf("writing %s: %w", path, err)
		}
		f.logger().Info("seed downloaded", "url", url, "path", path, "prizes", len(prizes))
		return len(prizes), nil
	}
	return 0, fmt.Errorf("downloading %s: %w", url, lastErr)
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, errors.New("response too large")
	}
	return data, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
