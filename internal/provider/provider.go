package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"sort"
	"strings"

	"github.com/markussiebert/dnscope/internal/family"
)

// Kind identifies a supported dynamic-DNS provider.
type Kind string

const (
	KindDuckDNS Kind = "duckdns"
	KindIPv64   Kind = "ipv64"
	KindNoIP    Kind = "noip"
	KindCustom  Kind = "custom"
	KindDynv6   Kind = "dynv6"
	KindRoute53 Kind = "route53"
)

// SuccessMarker must appear in an HTTP provider's response body for an update to count as successful.
const SuccessMarker = "OK"

var (
	// ErrUnknownProvider is returned by New for a kind without a factory.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrIncompleteConfig is returned by New when a required credential is missing.
	ErrIncompleteConfig = errors.New("incomplete provider configuration")
	// ErrUnreachable wraps transport failures (DNS, connect, timeout) talking to a provider.
	ErrUnreachable = errors.New("provider unreachable")
	// ErrRejected matches every *RejectedError.
	ErrRejected = errors.New("update rejected")
	// ErrNoChange is returned by providers that can read the record and found it already holds the address.
	ErrNoChange = errors.New("record already up to date")
)

// RejectedError is returned when a provider answered but did not accept the update.
type RejectedError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected the update (status %d): %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
}

// Is makes errors.Is(err, ErrRejected) hold for every RejectedError.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// Updater publishes a new address for a domain at a provider.
// A nil error means the provider confirmed the update.
type Updater interface {
	Name() string
	Update(ctx context.Context, f family.Family, domain string, addr netip.Addr) error
	Close(ctx context.Context) error
}

// factory creates an Updater from validated credentials.
type factory func(ctx context.Context, creds Credentials, opts options) (Updater, error)

type options struct {
	httpClient *http.Client
	userAgent  string
}

// Option customizes the updaters created by New.
type Option func(*options)

// WithHTTPClient sets the client used by HTTP based providers
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent to HTTP based providers
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

var factories = map[Kind]factory{
	KindDuckDNS: newDuckDNSUpdater,
	KindIPv64:   newIPv64Updater,
	KindNoIP:    newNoIPUpdater,
	KindCustom:  newCustomUpdater,
	KindDynv6:   newDynv6Updater,
	KindRoute53: newRoute53Updater,
}

// ParseKind normalizes a provider name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := factories[kind]; !ok {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, name, strings.Join(List(), ", "))
	}
	return kind, nil
}

// New validates the credentials required by kind and creates its updater.
func New(ctx context.Context, kind Kind, creds Credentials, opts ...Option) (Updater, error) {
	create, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
	if err := creds.Validate(kind); err != nil {
		return nil, err
	}

	o := options{userAgent: "dnscope"}
	for _, opt := range opts {
		opt(&o)
	}
	return create(ctx, creds, o)
}

// List returns the names of all supported providers, sorted alphabetically.
func List() []string {
	names := make([]string, 0, len(factories))
	for kind := range factories {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}
