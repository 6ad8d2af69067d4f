package family

import (
	"fmt"
	"net/netip"
)

// Family is an IP address family. Each family is handled as an independent branch of a run.
type Family int

const (
	// V4 is the IPv4 address family
	V4 Family = iota
	// V6 is the IPv6 address family
	V6
)

// All lists the families in the order a run processes them.
var All = []Family{V4, V6}

// String returns "IPv4" or "IPv6"
func (f Family) String() string {
	switch f {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// StateKey returns the key under which the last observed address of this family is persisted.
func (f Family) StateKey() string {
	return "data.current" + f.String()
}

// RecordType returns the DNS record type holding addresses of this family.
func (f Family) RecordType() string {
	if f == V6 {
		return "AAAA"
	}
	return "A"
}

// Network returns the network name understood by net.Resolver.LookupNetIP.
func (f Family) Network() string {
	if f == V6 {
		return "ip6"
	}
	return "ip4"
}

// Contains reports whether addr belongs to this family.
// IPv4-mapped IPv6 addresses count as IPv4.
func (f Family) Contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	if f == V6 {
		return addr.Is6()
	}
	return addr.Is4()
}
