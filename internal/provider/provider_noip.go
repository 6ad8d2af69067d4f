package provider

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/markussiebert/dnscope/internal/family"
)

// NoIPEndpoint is the No-IP update API
const NoIPEndpoint = "https://dynupdate.no-ip.com/nic/update"

// NoIP builds No-IP update requests authenticated with HTTP basic auth.
type NoIP struct {
	User     string
	Password string
	Endpoint string
}

// Request implements requestBuilder
func (n NoIP) Request(ctx context.Context, _ family.Family, domain string, addr netip.Addr) (*http.Request, error) {
	endpoint := n.Endpoint
	if endpoint == "" {
		endpoint = NoIPEndpoint
	}
	req, err := newGet(ctx, buildURL(endpoint,
		param{"hostname", domain},
		param{"myip", addr.String()},
	))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(n.User, n.Password)
	return req, nil
}

func newNoIPUpdater(_ context.Context, creds Credentials, o options) (Updater, error) {
	return newHTTPUpdater(string(KindNoIP), NoIP{User: creds.NoIP.User, Password: creds.NoIP.Password}, o), nil
}
