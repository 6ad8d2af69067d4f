package provider

import (
	"context"
	"net/http"
	"net/netip"
	"strings"

	"github.com/markussiebert/dnscope/internal/family"
)

// DuckDNSEndpoint is the DuckDNS update API
const DuckDNSEndpoint = "https://www.duckdns.org/update"

// DuckDNS builds DuckDNS update requests.
type DuckDNS struct {
	Token    string
	Endpoint string
}

// Request implements requestBuilder.
// DuckDNS expects only the subdomain: "example.duckdns.org" is sent as "example".
func (d DuckDNS) Request(ctx context.Context, f family.Family, domain string, addr netip.Addr) (*http.Request, error) {
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = DuckDNSEndpoint
	}
	ipParam := "ip"
	if f == family.V6 {
		ipParam = "ipv6"
	}
	subdomain, _, _ := strings.Cut(domain, ".")
	return newGet(ctx, buildURL(endpoint,
		param{"domains", subdomain},
		param{"token", d.Token},
		param{ipParam, addr.String()},
	))
}

func newDuckDNSUpdater(_ context.Context, creds Credentials, o options) (Updater, error) {
	return newHTTPUpdater(string(KindDuckDNS), DuckDNS{Token: creds.DuckDNS.Token}, o), nil
}
