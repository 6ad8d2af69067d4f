package provider

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/markussiebert/dnscope/internal/family"
)

const (
	// Dynv6Endpoint is the dynv6 update API reached over IPv4
	Dynv6Endpoint = "https://ipv4.dynv6.com/api/update"
	// Dynv6EndpointV6 is the dynv6 update API reached over IPv6
	Dynv6EndpointV6 = "https://ipv6.dynv6.com/api/update"
)

// Dynv6 builds dynv6 update requests against the family specific host.
type Dynv6 struct {
	Token      string
	Endpoint   string
	EndpointV6 string
}

// Request implements requestBuilder
func (d Dynv6) Request(ctx context.Context, f family.Family, domain string, addr netip.Addr) (*http.Request, error) {
	endpoint, ipParam := d.Endpoint, "ipv4"
	if endpoint == "" {
		endpoint = Dynv6Endpoint
	}
	if f == family.V6 {
		endpoint, ipParam = d.EndpointV6, "ipv6"
		if endpoint == "" {
			endpoint = Dynv6EndpointV6
		}
	}
	return newGet(ctx, buildURL(endpoint,
		param{"hostname", domain},
		param{"token", d.Token},
		param{ipParam, addr.String()},
	))
}

func newDynv6Updater(_ context.Context, creds Credentials, o options) (Updater, error) {
	return newHTTPUpdater(string(KindDynv6), Dynv6{Token: creds.Dynv6.Token}, o), nil
}
