package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/state"
)

const (
	// DefaultIPv4URL reports the caller's public IPv4 address
	DefaultIPv4URL = "https://ipinfo.io/json"
	// DefaultIPv6URL reports the caller's public IPv6 address
	DefaultIPv6URL = "https://v6.ipinfo.io/json"
	// DefaultTimeout bounds a single geo-IP lookup
	DefaultTimeout = 10 * time.Second

	maxBodySize = 64 << 10
)

var (
	// ErrUnavailable is returned when the geo-IP service could not be reached or returned no usable address.
	ErrUnavailable = errors.New("public address unavailable")
)

// ipInfo is the subset of the ipinfo.io response we use.
type ipInfo struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	Org      string `json:"org,omitempty"`
}

// Prober looks up the caller's public address per family and records it in a state store.
type Prober struct {
	endpoints  map[family.Family]string
	httpClient *http.Client
	store      state.Store
	userAgent  string
}

// New creates a prober using the default ipinfo.io endpoints.
// store may be nil, in which case nothing is persisted.
func New(store state.Store) *Prober {
	return &Prober{
		endpoints: map[family.Family]string{
			family.V4: DefaultIPv4URL,
			family.V6: DefaultIPv6URL,
		},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		store: store,
	}
}

// WithEndpoint overrides the lookup URL of a family. Empty values are ignored.
func (p *Prober) WithEndpoint(f family.Family, endpoint string) *Prober {
	if endpoint != "" {
		p.endpoints[f] = endpoint
	}
	return p
}

// WithHTTPClient sets the client used for lookups
func (p *Prober) WithHTTPClient(c *http.Client) *Prober {
	if c != nil {
		p.httpClient = c
	}
	return p
}

// WithUserAgent sets the User-Agent header sent to the lookup service
func (p *Prober) WithUserAgent(ua string) *Prober {
	p.userAgent = ua
	return p
}

// Probe returns the current public address of the given family.
// All failures wrap ErrUnavailable.
func (p *Prober) Probe(ctx context.Context, f family.Family) (netip.Addr, error) {
	endpoint, ok := p.endpoints[f]
	if !ok {
		return netip.Addr{}, fmt.Errorf("%w: no lookup endpoint for %s", ErrUnavailable, f)
	}

	info, err := p.lookup(ctx, endpoint)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	logger.Debug("Lookup %s returned ip=%s hostname=%s org=%s", endpoint, info.IP, info.Hostname, info.Org)

	addr, parseErr := netip.ParseAddr(strings.TrimSpace(info.IP))
	if parseErr == nil && !f.Contains(addr) {
		parseErr = fmt.Errorf("%s is not an %s address", addr, f)
	}

	// The lookup itself succeeded, so the result is recorded even when it carries no usable address.
	recorded := state.NotAvailable
	if parseErr == nil {
		addr = addr.Unmap()
		recorded = addr.String()
	}
	p.record(ctx, f, recorded)

	if parseErr != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, parseErr)
	}
	return addr, nil
}

func (p *Prober) lookup(ctx context.Context, endpoint string) (*ipInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var info ipInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &info, nil
}

// record upserts the observed value; store errors are logged, not returned.
func (p *Prober) record(ctx context.Context, f family.Family, value string) {
	if p.store == nil {
		return
	}
	previous, changed, err := state.SetIfChanged(ctx, p.store, f.StateKey(), value)
	if err != nil {
		logger.Warn("Could not persist %s: %v", f.StateKey(), err)
		return
	}
	if !changed {
		logger.Debug("Public %s unchanged since last run: %s", f, value)
		return
	}
	if previous == "" {
		logger.Info("Public %s observed for the first time: %s", f, value)
		return
	}
	logger.Info("Public %s changed from %s to %s", f, previous, value)
}
