// Package source retrieves whole text documents: bibliographies and page fragments.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the default request rate for HTTP sources (requests per second).
	DefaultRate = 5.0

	// MaxDocumentSize caps how much of a response body is read.
	MaxDocumentSize = 16 * 1024 * 1024
)

// Source returns a whole document or fails.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// New picks an HTTP source for http(s) locations and a file source otherwise.
// Relative file paths are resolved against root.
func New(location, root string, opts ...HTTPOption) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTP(location, opts...)
	}
	path := location
	if !filepath.IsAbs(location) && root != "" {
		path = filepath.Join(root, location)
	}
	return File{Path: path, Name: location}
}

// File reads a document from disk.
type File struct {
	Path string
	Name string // configured location, used in errors; defaults to Path
}

// Fetch reads the whole file.
func (f File) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, f.name())
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return "", fmt.Errorf("reading %s: %w", f.name(), err)
	}
	return string(data), nil
}

func (f File) String() string { return f.Path }

func (f File) name() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Path
}

// Static is an in-memory source.
type Static struct {
	Text string
	Err  error
}

// Fetch returns the configured text or error.
func (s Static) Fetch(ctx context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// HTTP is a rate-limited source that GETs a URL.
type HTTP struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// HTTPOption configures an HTTP source.
type HTTPOption func(*HTTP)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.httpClient = hc
	}
}

// WithRate sets the request rate in requests per second.
// Non-positive values disable limiting.
func WithRate(perSecond float64) HTTPOption {
	return func(h *HTTP) {
		if perSecond <= 0 {
			h.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewHTTP creates an HTTP source for url.
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Fetch GETs the document. Non-2xx responses return a *StatusError.
func (h *HTTP) Fetch(ctx context.Context) (string, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, URL: h.url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	return string(body), nil
}

func (h *HTTP) String() string { return h.url }
