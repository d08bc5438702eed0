package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{"direct peer", "203.0.113.7:51000", "", "203.0.113.7"},
		{"public peer ignores header", "203.0.113.7:51000", "198.51.100.1", "203.0.113.7"},
		{"proxy forwards client", "10.0.0.5:443", "198.51.100.1", "198.51.100.1"},
		{"spoofed left entries", "127.0.0.1:443", "1.2.3.4, 198.51.100.1", "198.51.100.1"},
		{"proxy chain", "10.0.0.5:443", "198.51.100.1, 10.0.0.9", "198.51.100.1"},
		{"garbage header", "10.0.0.5:443", "not-an-ip", "10.0.0.5"},
		{"no port", "192.0.2.4", "", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, RealClientIP(r))
		})
	}
}
