package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/markussiebert/dnscope/internal/provider"
	"github.com/markussiebert/dnscope/internal/runner"
)

// ErrConfig marks configuration that cannot produce a run
var ErrConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Domain      string
	IPv4        bool
	IPv6        bool
	OnlyChanges bool

	Provider    provider.Kind
	Credentials provider.Credentials

	Nameserver    string
	StateFile     string
	IPv4LookupURL string
	IPv6LookupURL string
}

// ServerConfig holds the credentials protecting the trigger endpoint
type ServerConfig struct {
	Username     string
	PasswordHash string
}

// Runner returns the settings the orchestrator needs
func (c *Config) Runner() runner.Config {
	return runner.Config{
		Domain:      c.Domain,
		IPv4:        c.IPv4,
		IPv6:        c.IPv6,
		OnlyChanges: c.OnlyChanges,
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		IPv4:        true,
		IPv6:        false,
		OnlyChanges: true,
		Provider:    provider.KindDuckDNS, // default provider
	}

	var err error
	if config.IPv4, err = envBool("IPV4", config.IPv4); err != nil {
		return nil, err
	}
	if config.IPv6, err = envBool("IPV6", config.IPv6); err != nil {
		return nil, err
	}
	if !config.IPv4 && !config.IPv6 {
		return nil, fmt.Errorf("%w: at least one of IPV4 and IPV6 must be enabled", ErrConfig)
	}
	if config.OnlyChanges, err = envBool("ONLY_CHANGES", config.OnlyChanges); err != nil {
		return nil, err
	}

	// Domain
	config.Domain = strings.TrimSuffix(strings.TrimSpace(os.Getenv("DOMAIN")), ".")
	if config.Domain == "" {
		return nil, fmt.Errorf("%w: DOMAIN is required", ErrConfig)
	}

	// Provider selection; DYNDNS_SERVIVE is the option name used by existing installations
	name := firstEnv("DYNDNS_SERVICE", "DYNDNS_SERVIVE")
	if name != "" {
		kind, err := provider.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: DYNDNS_SERVICE: %w", ErrConfig, err)
		}
		config.Provider = kind
	}

	config.Credentials = provider.Credentials{
		DuckDNS: provider.DuckDNSConfig{Token: os.Getenv("DUCKDNS_TOKEN")},
		IPv64:   provider.IPv64Config{Token: os.Getenv("IPV64_TOKEN")},
		NoIP: provider.NoIPConfig{
			User:     os.Getenv("NOIP_USER"),
			Password: os.Getenv("NOIP_PASSWORD"),
		},
		Dynv6:   provider.Dynv6Config{Token: os.Getenv("DYNV6_TOKEN")},
		Custom:  provider.CustomConfig{URL: os.Getenv("CUSTOM_URL")},
		Route53: provider.AwsRoute53Config{Zone: os.Getenv("ROUTE53_ZONE")},
	}

	// TTL
	if ttl := os.Getenv("DNS_TTL"); ttl != "" {
		t, err := strconv.Atoi(ttl)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid DNS_TTL: %w", ErrConfig, err)
		}
		config.Credentials.Route53.TTL = t
	}

	if err := config.Credentials.Validate(config.Provider); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	config.Nameserver = os.Getenv("NAMESERVER")
	config.IPv4LookupURL = os.Getenv("IPV4_LOOKUP_URL")
	config.IPv6LookupURL = os.Getenv("IPV6_LOOKUP_URL")

	config.StateFile = os.Getenv("STATE_FILE")
	if config.StateFile == "" {
		config.StateFile = defaultStateFile()
	}

	return config, nil
}

// LoadServerConfig reads the trigger endpoint credentials
func LoadServerConfig() (*ServerConfig, error) {
	config := &ServerConfig{
		Username:     os.Getenv("AUTH_USERNAME"),
		PasswordHash: os.Getenv("AUTH_PASSWORD_HASH"),
	}
	if config.Username == "" {
		return nil, fmt.Errorf("%w: AUTH_USERNAME is required", ErrConfig)
	}
	if config.PasswordHash == "" {
		return nil, fmt.Errorf("%w: AUTH_PASSWORD_HASH is required", ErrConfig)
	}
	return config, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: invalid %s: %q", ErrConfig, key, v)
	}
	return b, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func defaultStateFile() string {
	if IsRunningInContainer() {
		return "/data/dnscope.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "dnscope.db"
	}
	return filepath.Join(home, ".dnscope", "state.db")
}

// IsRunningInContainer reports whether the process runs inside a container
func IsRunningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	text := string(data)
	return strings.Contains(text, "docker") || strings.Contains(text, "kubepods") || strings.Contains(text, "containerd") || strings.Contains(text, "podman")
}
