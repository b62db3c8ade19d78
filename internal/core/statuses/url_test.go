package statuses

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLBuilder_Status(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://murmur.example", "https://murmur.example/statuses/42"},
		{"https://murmur.example/", "https://murmur.example/statuses/42"},
		{"https://murmur.example/social", "https://murmur.example/social/statuses/42"},
		{"http://localhost:8081/?x=1#frag", "http://localhost:8081/statuses/42"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			b, err := NewURLBuilder(tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Status("42"))
		})
	}
}

func TestURLBuilder_Path(t *testing.T) {
	b, err := NewURLBuilder("https://murmur.example/api")
	require.NoError(t, err)
	assert.Equal(t, "https://murmur.example/api/users/alice", b.Path("/users/alice"))
}

func TestURLBuilder_InvalidBase(t *testing.T) {
	for _, base := range []string{"", "murmur.example", "ftp://murmur.example", "https://", "://bad"} {
		t.Run(base, func(t *testing.T) {
			_, err := NewURLBuilder(base)
			assert.ErrorIs(t, err, ErrInvalidBaseURL)
		})
	}
}
