package provider

import (
	"fmt"
	"net/url"
)

// DuckDNSConfig holds DuckDNS specific configuration.
type DuckDNSConfig struct {
	Token string
}

// IPv64Config holds ipv64.net specific configuration.
type IPv64Config struct {
	Token string
}

// NoIPConfig holds No-IP specific configuration.
type NoIPConfig struct {
	User     string
	Password string
}

// Dynv6Config holds dynv6 specific configuration.
type Dynv6Config struct {
	Token string
}

// CustomConfig holds the operator supplied update URL.
// The URL is requested as is, no address or credential is substituted.
type CustomConfig struct {
	URL string
}

// AwsRoute53Config holds AWS Route53 specific configuration.
// Credentials come from the default AWS SDK configuration chain.
type AwsRoute53Config struct {
	// Zone is the hosted zone name. Empty picks the longest hosted zone the domain belongs to.
	Zone string
	TTL  int
}

// Credentials carries the settings of every provider; only the selected kind's part is used.
type Credentials struct {
	DuckDNS DuckDNSConfig
	IPv64   IPv64Config
	NoIP    NoIPConfig
	Dynv6   Dynv6Config
	Custom  CustomConfig
	Route53 AwsRoute53Config
}

// Validate checks that the fields required by kind are present.
func (c Credentials) Validate(kind Kind) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrIncompleteConfig, kind, field)
	}

	switch kind {
	case KindDuckDNS:
		if c.DuckDNS.Token == "" {
			return missing("a token")
		}
	case KindIPv64:
		if c.IPv64.Token == "" {
			return missing("a token")
		}
	case KindNoIP:
		if c.NoIP.User == "" || c.NoIP.Password == "" {
			return missing("a user and a password")
		}
	case KindDynv6:
		if c.Dynv6.Token == "" {
			return missing("a token")
		}
	case KindCustom:
		if c.Custom.URL == "" {
			return missing("an update URL")
		}
		u, err := url.Parse(c.Custom.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: custom update URL must be an absolute http(s) URL", ErrIncompleteConfig)
		}
	case KindRoute53:
		if c.Route53.TTL < 0 {
			return fmt.Errorf("%w: route53 TTL must not be negative", ErrIncompleteConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
	return nil
}
