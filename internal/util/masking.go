package util

import (
	"net/url"
	"strings"
)

const (
	// MaskingThresholdShort is the length below which values are fully masked
	MaskingThresholdShort = 4
)

// MaskValue masks a value for logging (shows first 2 and last 2 characters)
// Used for API keys, tokens, and other sensitive values
func MaskValue(value string) string {
	if len(value) == 0 {
		return "<empty>"
	}
	if len(value) <= MaskingThresholdShort {
		return "***"
	}
	return value[:2] + "..." + value[len(value)-2:]
}

// IsSensitiveKey checks if a key name suggests sensitive information
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitivePatterns := []string{
		"password", "secret", "key", "token", "hash",
	}
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerKey, pattern) {
			return true
		}
	}
	return false
}

// MaskURL masks user info and sensitive query parameters of an update URL.
// Parameter order is preserved. Unparseable input is masked completely.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	if u.RawQuery == "" {
		return u.String()
	}

	pairs := strings.Split(u.RawQuery, "&")
	for i, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || !IsSensitiveKey(name) {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		pairs[i] = name + "=" + MaskValue(value)
	}
	u.RawQuery = strings.Join(pairs, "&")
	return u.String()
}
