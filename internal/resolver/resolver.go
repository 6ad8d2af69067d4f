package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
)

// DefaultTimeout bounds a query sent to an explicit nameserver
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotResolved is returned when a domain has no published address of the requested family.
	ErrNotResolved = errors.New("domain not resolved")
)

// System resolves through the operating system's resolver.
type System struct {
	resolver *net.Resolver
}

// NewSystem creates a resolver backed by net.DefaultResolver
func NewSystem() *System {
	return &System{resolver: net.DefaultResolver}
}

// Resolve returns the first published address of the given family.
func (s *System) Resolve(ctx context.Context, domain string, f family.Family) (netip.Addr, error) {
	addrs, err := s.resolver.LookupNetIP(ctx, f.Network(), domain)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s %s: %v", ErrNotResolved, f.RecordType(), domain, err)
	}
	return first(domain, f, addrs)
}

// Nameserver resolves by querying one nameserver directly, bypassing local caches.
type Nameserver struct {
	server string
	client *dns.Client
}

// NewNameserver creates a resolver for server ("host" or "host:port", port 53 by default).
func NewNameserver(server string) *Nameserver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	return &Nameserver{
		server: server,
		client: &dns.Client{
			Net:     "udp",
			Timeout: DefaultTimeout,
		},
	}
}

// Resolve returns the first published address of the given family.
func (n *Nameserver) Resolve(ctx context.Context, domain string, f family.Family) (netip.Addr, error) {
	qtype := dns.TypeA
	if f == family.V6 {
		qtype = dns.TypeAAAA
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), qtype)
	msg.RecursionDesired = true

	logger.Debug("Querying %s for %s %s", n.server, f.RecordType(), domain)
	in, _, err := n.client.ExchangeContext(ctx, msg, n.server)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %s %s via %s: %v", ErrNotResolved, f.RecordType(), domain, n.server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("%w: %s %s via %s: %s", ErrNotResolved, f.RecordType(), domain, n.server, dns.RcodeToString[in.Rcode])
	}

	var addrs []netip.Addr
	for _, rr := range in.Answer {
		var ip net.IP
		switch v := rr.(type) {
		case *dns.A:
			ip = v.A
		case *dns.AAAA:
			ip = v.AAAA
		default:
			continue // CNAME chain entries
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr)
		}
	}
	return first(domain, f, addrs)
}

func first(domain string, f family.Family, addrs []netip.Addr) (netip.Addr, error) {
	for _, addr := range addrs {
		if f.Contains(addr) {
			addr = addr.Unmap()
			logger.Debug("%s for %s: %s (%d published)", f, domain, addr, len(addrs))
			return addr, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: no %s record for %s", ErrNotResolved, f.RecordType(), domain)
}
