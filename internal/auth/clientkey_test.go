package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKey(t *testing.T) {
	testCases := []struct {
		name         string
		forwardedFor string
		remoteAddr   string
		expected     string
	}{
		{
			name:         "first forwarded address wins",
			forwardedFor: "203.0.113.7, 10.0.0.1, 10.0.0.2",
			remoteAddr:   "10.0.0.2:4431",
			expected:     "203.0.113.7",
		},
		{
			name:         "single forwarded address",
			forwardedFor: "203.0.113.7",
			remoteAddr:   "10.0.0.2:4431",
			expected:     "203.0.113.7",
		},
		{
			name:         "forwarded address is trimmed",
			forwardedFor: "  203.0.113.7 , 10.0.0.1",
			remoteAddr:   "10.0.0.2:4431",
			expected:     "203.0.113.7",
		},
		{
			name:       "falls back to remote host",
			remoteAddr: "192.0.2.9:51234",
			expected:   "192.0.2.9",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.9",
			expected:   "192.0.2.9",
		},
		{
			name:         "empty forwarded entries fall through",
			forwardedFor: " , ",
			remoteAddr:   "192.0.2.9:51234",
			expected:     "192.0.2.9",
		},
		{
			name:     "no origin at all shares the unknown bucket",
			expected: UnknownClientKey,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClientKey(tc.forwardedFor, tc.remoteAddr))
		})
	}
}
