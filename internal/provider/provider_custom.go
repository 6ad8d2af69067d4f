package provider

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/markussiebert/dnscope/internal/family"
)

// Custom requests an operator supplied URL verbatim.
// Neither the address nor any credential is substituted, so the URL must identify
// the caller on its own (most services then use the request's source address).
type Custom struct {
	URL string
}

// Request implements requestBuilder
func (c Custom) Request(ctx context.Context, _ family.Family, _ string, _ netip.Addr) (*http.Request, error) {
	return newGet(ctx, c.URL)
}

func newCustomUpdater(_ context.Context, creds Credentials, o options) (Updater, error) {
	return newHTTPUpdater(string(KindCustom), Custom{URL: creds.Custom.URL}, o), nil
}
