package api

import (
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"default when unset", "", defaultHTTPTimeout},
		{"duration format", "45s", 45 * time.Second},
		{"integer seconds", "25", 25 * time.Second},
		{"invalid falls back", "soon", defaultHTTPTimeout},
		{"negative falls back", "-3s", defaultHTTPTimeout},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(httpTimeoutEnvKey, tc.value)
			if got := httpTimeoutFromEnv(); got != tc.want {
				t.Fatalf("timeout = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://127.0.0.1:7411/")
	if c.baseURL != "http://127.0.0.1:7411" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
}
