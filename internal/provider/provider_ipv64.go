package provider

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/markussiebert/dnscope/internal/family"
)

const (
	// IPv64Endpoint is the ipv64.net update API for IPv4 addresses
	IPv64Endpoint = "https://ipv64.net/update.php"
	// IPv64EndpointV6 is the ipv64.net update API for IPv6 addresses
	IPv64EndpointV6 = "https://ipv64.net/nic/update"
)

// IPv64 builds ipv64.net update requests. IPv4 and IPv6 use different paths and parameters.
type IPv64 struct {
	Token      string
	Endpoint   string
	EndpointV6 string
}

// Request implements requestBuilder
func (p IPv64) Request(ctx context.Context, f family.Family, domain string, addr netip.Addr) (*http.Request, error) {
	if f == family.V6 {
		endpoint := p.EndpointV6
		if endpoint == "" {
			endpoint = IPv64EndpointV6
		}
		return newGet(ctx, buildURL(endpoint,
			param{"key", p.Token},
			param{"domain", domain},
			param{"ip6", addr.String()},
		))
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = IPv64Endpoint
	}
	return newGet(ctx, buildURL(endpoint,
		param{"key", p.Token},
		param{"domain", domain},
		param{"ip", addr.String()},
	))
}

func newIPv64Updater(_ context.Context, creds Credentials, o options) (Updater, error) {
	return newHTTPUpdater(string(KindIPv64), IPv64{Token: creds.IPv64.Token}, o), nil
}
