// Package fetch retrieves remote artifacts over HTTP, or from the object store
// mirror for s3:// locations, and unpacks zip archives onto disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/skinmgr/internal/apperr"
	"github.com/xxxsen/skinmgr/internal/storage"
)

const defaultTimeout = 10 * time.Minute

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Client downloads artifacts.
type Client struct {
	httpClient *http.Client
	mirror     storage.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithTimeout sets the whole-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.httpClient.Timeout = d
		}
	}
}

// WithMirror serves s3:// locations through the given object store client.
func WithMirror(m storage.Client) Option {
	return func(cl *Client) {
		cl.mirror = m
	}
}

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the full response body of url. Transport failures and non-2xx
// responses are reported as apperr.ErrNetwork.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("url", url))
	start := time.Now()

	if storage.IsLocation(url) {
		data, err := c.fetchMirror(ctx, url)
		if err != nil {
			return nil, err
		}
		logger.Debug("fetched from mirror", zap.Int("bytes", len(data)), zap.Duration("took", time.Since(start)))
		return data, nil
	}

	body, err := c.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNetwork, "fetch", "read body of "+url, err)
	}
	logger.Debug("fetched", zap.Int("bytes", len(data)), zap.Duration("took", time.Since(start)))
	return data, nil
}

// Download writes the body of url to dest. The file is written next to dest
// and renamed into place, so dest is either the old or the new content.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return apperr.Wrap(apperr.ErrFileSystem, "download", "create directory for "+dest, err)
	}

	if storage.IsLocation(url) {
		if c.mirror == nil {
			return apperr.Wrap(apperr.ErrConfiguration, "download", "no mirror configured for "+url, nil)
		}
		bucket, key, err := storage.ParseLocation(url)
		if err != nil {
			return apperr.Wrap(apperr.ErrConfiguration, "download", "", err)
		}
		out, err := createTemp(dest)
		if err != nil {
			return err
		}
		tmp := out.Name()
		out.Close()
		if err := c.mirror.DownloadToFile(ctx, bucket, key, tmp); err != nil {
			_ = os.Remove(tmp)
			return apperr.Wrap(apperr.ErrNetwork, "download", url, err)
		}
		return rename(tmp, dest)
	}

	body, err := c.open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := createTemp(dest)
	if err != nil {
		return err
	}
	tmp := out.Name()
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.ErrNetwork, "download", "read body of "+url, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.ErrFileSystem, "download", "close "+tmp, err)
	}
	return rename(tmp, dest)
}

// createTemp opens a temp file beside dest, unique per caller.
func createTemp(dest string) (*os.File, error) {
	out, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrFileSystem, "download", "create temp file for "+dest, err)
	}
	if err := out.Chmod(0o644); err != nil {
		out.Close()
		_ = os.Remove(out.Name())
		return nil, apperr.Wrap(apperr.ErrFileSystem, "download", "chmod "+out.Name(), err)
	}
	return out, nil
}

func rename(tmp, dest string) error {
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return apperr.Wrap(apperr.ErrFileSystem, "download", "replace "+dest, err)
	}
	return nil
}

func (c *Client) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNetwork, "fetch", "build request for "+url, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNetwork, "fetch", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, apperr.Wrap(apperr.ErrNetwork, "fetch", "", &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}
	return resp.Body, nil
}

func (c *Client) fetchMirror(ctx context.Context, url string) ([]byte, error) {
	if c.mirror == nil {
		return nil, apperr.Wrap(apperr.ErrConfiguration, "fetch", "no mirror configured for "+url, nil)
	}
	bucket, key, err := storage.ParseLocation(url)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrConfiguration, "fetch", "", err)
	}
	data, err := c.mirror.ReadObject(ctx, bucket, key)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNetwork, "fetch", url, err)
	}
	return data, nil
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
