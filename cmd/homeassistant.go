package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/markussiebert/dnscope/internal/logger"
	"github.com/markussiebert/dnscope/internal/util"
)

// LoadHomeAssistantOptions reads Supervisor's add-on options and exports them as environment variables.
// Option keys are camelCase ("duckdnsToken") and become DUCKDNS_TOKEN.
// It reports whether an options file was found.
func LoadHomeAssistantOptions() (bool, error) {
	optionsPath := os.Getenv("ADDON_OPTIONS_PATH")
	if optionsPath == "" {
		optionsPath = "/data/options.json"
	}

	info, err := os.Stat(optionsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // Not running as Home Assistant add-on
		}
		return false, fmt.Errorf("failed to stat options file %s: %w", optionsPath, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("options path %s is a directory", optionsPath)
	}

	data, err := os.ReadFile(optionsPath)
	if err != nil {
		return false, fmt.Errorf("failed to read options file %s: %w", optionsPath, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("failed to parse options.json: %w", err)
	}

	for key, value := range raw {
		envKey := camelToEnv(key)
		if envKey == "" {
			continue
		}
		var envValue string
		switch v := value.(type) {
		case nil:
			continue
		case string:
			envValue = v
		case bool:
			envValue = fmt.Sprintf("%t", v)
		default:
			envValue = fmt.Sprintf("%v", v)
		}
		if envValue == "" {
			continue
		}
		if err := os.Setenv(envKey, envValue); err != nil {
			return false, fmt.Errorf("failed to export option %s: %w", key, err)
		}
		logger.Debug("Option %s -> %s=%s", key, envKey, maskOption(envKey, envValue))
	}

	return true, nil
}

// camelToEnv converts an option key to its environment variable name:
// "onlyChanges" -> ONLY_CHANGES, "customURL" -> CUSTOM_URL, "ipv64Token" -> IPV64_TOKEN.
func camelToEnv(key string) string {
	key = strings.TrimSpace(key)
	runes := []rune(key)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func maskOption(key, value string) string {
	if strings.HasSuffix(key, "_URL") {
		return util.MaskURL(value)
	}
	if util.IsSensitiveKey(key) {
		return util.MaskValue(value)
	}
	return value
}
