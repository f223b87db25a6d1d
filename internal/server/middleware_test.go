package server

import (
	"net/http/httptest"
	"testing"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{
			name:       "forwarded single hop",
			forwarded:  "203.0.113.7",
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "forwarded chain uses first hop only",
			forwarded:  "203.0.113.7, 198.51.100.2, 10.0.0.1",
			remoteAddr: "10.0.0.1:1234",
			expected:   "203.0.113.7",
		},
		{
			name:       "real ip fallback",
			realIP:     "198.51.100.9",
			remoteAddr: "10.0.0.1:1234",
			expected:   "198.51.100.9",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "10.0.0.1:1234",
			expected:   "10.0.0.1:1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/sanitize", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := getClientIP(r); got != tt.expected {
				t.Errorf("getClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}
