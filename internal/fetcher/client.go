package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultSizeCap bounds how much of a response body is read.
const DefaultSizeCap = 5 * 1024 * 1024

var (
	// ErrStatus is returned when the target answers with a non-success status.
	ErrStatus = errors.New("unexpected http status")
	// ErrTooLarge is returned when the body exceeds the size cap. A truncated
	// page would hash consistently while hiding edits past the cut.
	ErrTooLarge = errors.New("response body too large")
)

// Fetcher retrieves the current markup of a page.
type Fetcher interface {
	// Fetch returns the response body and its Content-Type.
	Fetch(ctx context.Context, rawURL string) ([]byte, string, error)
}

// HTTPClient fetches pages over the network with a hard timeout.
type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

// NewHTTPClient builds a client whose requests never outlive timeout.
func NewHTTPClient(timeout time.Duration, sizeCap int64) *HTTPClient {
	if sizeCap <= 0 {
		sizeCap = DefaultSizeCap
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: timeout,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "defacemon/1.0",
	}
}

// Timeout reports the per-request limit of the client.
func (h *HTTPClient) Timeout() time.Duration {
	return h.client.Timeout
}

// Fetch issues a GET for rawURL.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, "", err
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(io.LimitReader(body, h.sizeCap+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > h.sizeCap {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, h.sizeCap)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
