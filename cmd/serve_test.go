package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRedirectURL(t *testing.T) {
	tests := []struct {
		name     string
		httpAddr string
		expected string
	}{
		{
			name:     "bare port",
			httpAddr: ":8000",
			expected: "http://127.0.0.1:8000/gmail/auth/callback",
		},
		{
			name:     "host and port",
			httpAddr: "0.0.0.0:8080",
			expected: "http://0.0.0.0:8080/gmail/auth/callback",
		},
		{
			name:     "loopback",
			httpAddr: "localhost:9000",
			expected: "http://localhost:9000/gmail/auth/callback",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, defaultRedirectURL(tt.httpAddr))
		})
	}
}
