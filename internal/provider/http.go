package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/util"
)

const (
	// DefaultTimeout bounds a single update request
	DefaultTimeout = 10 * time.Second
	maxBodySize    = 64 << 10
)

// requestBuilder maps an update to the provider's GET request.
// Implementations must be deterministic: equal input yields an identical request.
type requestBuilder interface {
	Request(ctx context.Context, f family.Family, domain string, addr netip.Addr) (*http.Request, error)
}

// HTTPUpdater sends the request built for a provider and checks the response for SuccessMarker.
type HTTPUpdater struct {
	name       string
	builder    requestBuilder
	httpClient *http.Client
	userAgent  string
}

func newHTTPUpdater(name string, builder requestBuilder, o options) *HTTPUpdater {
	client := o.httpClient
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
		}
	}
	return &HTTPUpdater{
		name:       name,
		builder:    builder,
		httpClient: client,
		userAgent:  o.userAgent,
	}
}

// Name returns the provider name
func (u *HTTPUpdater) Name() string {
	return u.name
}

// Update publishes addr for domain
func (u *HTTPUpdater) Update(ctx context.Context, f family.Family, domain string, addr netip.Addr) error {
	if !f.Contains(addr) {
		return fmt.Errorf("%s: no valid %s address to publish", u.name, f)
	}

	req, err := u.builder.Request(ctx, f, domain, addr)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", u.name, err)
	}
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	logger.Debug("%s: GET %s", u.name, util.MaskURL(req.URL.String()))

	resp, err := u.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the request URL, which carries the token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, u.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %v", ErrUnreachable, u.name, err)
	}

	logger.Debug("%s: status %d, body %q", u.name, resp.StatusCode, strings.TrimSpace(string(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !strings.Contains(string(body), SuccessMarker) {
		return &RejectedError{
			Provider:   u.name,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return nil
}

// Close releases idle connections
func (u *HTTPUpdater) Close(ctx context.Context) error {
	u.httpClient.CloseIdleConnections()
	return nil
}

// param is one query parameter; a slice of them keeps the provider's documented order.
type param struct {
	key   string
	value string
}

// buildURL appends params to endpoint in order, query-escaping every value.
func buildURL(endpoint string, params ...param) string {
	var b strings.Builder
	b.WriteString(endpoint)
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
		sep = "&"
	}
	return b.String()
}

func newGet(ctx context.Context, rawURL string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
}
