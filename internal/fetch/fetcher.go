package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/julienpequegnot/openqa/internal/cache"
)

// Failure reasons recorded in the download task status.
const (
	ReasonRequestFailed = "URL request failed"
	ReasonTooLarge      = "File too large"
	ReasonWriteFailed   = "Could not save file"
)

// Error describes why a download failed in the terms shown to users.
type Error struct {
	Reason  string
	Details string
	Err     error
}

func (e *Error) Error() string {
	return e.Reason + ": " + e.Details
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Download struct {
	CacheURL    string
	Path        string
	Size        int64
	ContentType string
}

type Fetcher struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	maxBytes  int64
}

func NewFetcher(c *cache.Cache, timeout time.Duration, userAgent string, maxBytes int64) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		cache:     c,
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch downloads a resource URL into the cache. Failures are returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, resourceID, resourceURL string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return nil, &Error{Reason: ReasonRequestFailed, Details: "Invalid URL", Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Reason: ReasonRequestFailed, Details: "Connection error", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Reason:  ReasonRequestFailed,
			Details: fmt.Sprintf("Server returned %d error", resp.StatusCode),
		}
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, &Error{
			Reason:  ReasonTooLarge,
			Details: fmt.Sprintf("Content-Length %d exceeds the %d byte limit", resp.ContentLength, f.maxBytes),
		}
	}

	filename := filenameFromURL(resourceURL)
	finalPath := f.cache.Path(resourceID, filename)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return nil, &Error{Reason: ReasonWriteFailed, Details: err.Error(), Err: err}
	}

	tmpPath := finalPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return nil, &Error{Reason: ReasonWriteFailed, Details: err.Error(), Err: err}
	}

	body := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	n, err := io.Copy(out, body)
	out.Close()
	if err == nil && f.maxBytes > 0 && n > f.maxBytes {
		err = &Error{Reason: ReasonTooLarge, Details: fmt.Sprintf("File exceeds the %d byte limit", f.maxBytes)}
	}
	if err != nil {
		os.Remove(tmpPath)
		var fe *Error
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &Error{Reason: ReasonRequestFailed, Details: "Download interrupted", Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, &Error{Reason: ReasonWriteFailed, Details: err.Error(), Err: err}
	}

	return &Download{
		CacheURL:    f.cache.URLFor(resourceID, filename),
		Path:        finalPath,
		Size:        n,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func filenameFromURL(rawURL string) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		return "resource"
	}
	return name
}
