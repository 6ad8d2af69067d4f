package main

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestServeDefault(t *testing.T) {
	testCases := []struct {
		name         string
		args         []string
		inContainer  bool
		authUsername string
		expected     []string
	}{
		{"bare container with auth", []string{"dnscope"}, true, "admin", []string{"dnscope", "serve"}},
		{"bare container without auth", []string{"dnscope"}, true, "", []string{"dnscope"}},
		{"outside container", []string{"dnscope"}, false, "admin", []string{"dnscope"}},
		{"explicit command", []string{"dnscope", "run"}, true, "admin", []string{"dnscope", "run"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, serveDefault(tc.args, tc.inContainer, tc.authUsername))
		})
	}
}
