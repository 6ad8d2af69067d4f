package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/markussiebert/dnscope/internal/provider"
)

func TestCamelToEnv(t *testing.T) {
	testCases := map[string]string{
		"ipv4":          "IPV4",
		"onlyChanges":   "ONLY_CHANGES",
		"dyndnsServive": "DYNDNS_SERVIVE",
		"duckdnsToken":  "DUCKDNS_TOKEN",
		"ipv64Token":    "IPV64_TOKEN",
		"noipPassword":  "NOIP_PASSWORD",
		"customURL":     "CUSTOM_URL",
		"log_level":     "LOG_LEVEL",
		"AUTH_USERNAME": "AUTH_USERNAME",
		"state file":    "STATE_FILE",
	}
	for in, expected := range testCases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, expected, camelToEnv(in))
		})
	}
}

func TestLoadHomeAssistantOptions(t *testing.T) {
	setEnv(t, nil)

	path := filepath.Join(t.TempDir(), "options.json")
	err := os.WriteFile(path, []byte(`{
		"ipv4": true,
		"ipv6": true,
		"domain": "example.duckdns.org",
		"dyndnsServive": "duckdns",
		"onlyChanges": false,
		"duckdnsToken": "secret-token",
		"customURL": "",
		"stateFile": "/tmp/ha-state.db",
		"dnsTtl": 120
	}`), 0o600)
	assert.NoError(t, err)
	t.Setenv("ADDON_OPTIONS_PATH", path)

	found, err := LoadHomeAssistantOptions()
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "120", os.Getenv("DNS_TTL"))

	config, err := LoadConfig()
	assert.NoError(t, err)
	assert.True(t, config.IPv4)
	assert.True(t, config.IPv6)
	assert.False(t, config.OnlyChanges)
	assert.Equal(t, "example.duckdns.org", config.Domain)
	assert.Equal(t, provider.KindDuckDNS, config.Provider)
	assert.Equal(t, "secret-token", config.Credentials.DuckDNS.Token)
	assert.Equal(t, "", config.Credentials.Custom.URL)
	assert.Equal(t, "/tmp/ha-state.db", config.StateFile)
}

func TestLoadHomeAssistantOptions_Missing(t *testing.T) {
	t.Setenv("ADDON_OPTIONS_PATH", filepath.Join(t.TempDir(), "absent.json"))
	found, err := LoadHomeAssistantOptions()
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestLoadHomeAssistantOptions_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
	t.Setenv("ADDON_OPTIONS_PATH", path)

	_, err := LoadHomeAssistantOptions()
	assert.Error(t, err)

	t.Setenv("ADDON_OPTIONS_PATH", t.TempDir())
	_, err = LoadHomeAssistantOptions()
	assert.Error(t, err)
}
