package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/miekg/dns"

	"github.com/markussiebert/dnscope/internal/family"
)

// startNameserver runs an in-process UDP nameserver answering from records.
func startNameserver(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	assert.NoError(t, err)

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]
		key := q.Name + " " + dns.TypeToString[q.Qtype]
		rrs, ok := records[key]
		if !ok {
			m.Rcode = dns.RcodeNameError
		}
		for _, s := range rrs {
			rr, err := dns.NewRR(s)
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func TestNameserver_Resolve(t *testing.T) {
	addr := startNameserver(t, map[string][]string{
		"example.dyn.tld. A": {
			"example.dyn.tld. 60 IN A 203.0.113.5",
			"example.dyn.tld. 60 IN A 203.0.113.6",
		},
		"example.dyn.tld. AAAA": {"example.dyn.tld. 60 IN AAAA 2001:db8::5"},
		"alias.dyn.tld. A": {
			"alias.dyn.tld. 60 IN CNAME example.dyn.tld.",
			"example.dyn.tld. 60 IN A 203.0.113.5",
		},
		"v4only.dyn.tld. AAAA": {},
	})
	r := NewNameserver(addr)
	ctx := context.Background()

	got, err := r.Resolve(ctx, "example.dyn.tld", family.V4)
	assert.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("203.0.113.5"), got)

	got, err = r.Resolve(ctx, "example.dyn.tld", family.V6)
	assert.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("2001:db8::5"), got)

	got, err = r.Resolve(ctx, "alias.dyn.tld", family.V4)
	assert.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("203.0.113.5"), got)

	_, err = r.Resolve(ctx, "v4only.dyn.tld", family.V6)
	assert.True(t, errors.Is(err, ErrNotResolved))

	_, err = r.Resolve(ctx, "missing.dyn.tld", family.V4)
	assert.True(t, errors.Is(err, ErrNotResolved))
}

func TestNewNameserver_DefaultPort(t *testing.T) {
	assert.Equal(t, "1.1.1.1:53", NewNameserver("1.1.1.1").server)
	assert.Equal(t, "[2606:4700:4700::1111]:53", NewNameserver("2606:4700:4700::1111").server)
	assert.Equal(t, "127.0.0.1:5353", NewNameserver("127.0.0.1:5353").server)
}

func TestSystem_ResolveLocalhost(t *testing.T) {
	got, err := NewSystem().Resolve(context.Background(), "127.0.0.1", family.V4)
	assert.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("127.0.0.1"), got)

	_, err = NewSystem().Resolve(context.Background(), "127.0.0.1", family.V6)
	assert.True(t, errors.Is(err, ErrNotResolved))
}
