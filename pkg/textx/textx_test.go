package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name, in, want string
	}{
		{"control chars", "he\x00llo\nwo\x7frld\t!", "hello\nworld\t!"},
		{"trims", "  \tanswer \n", "answer"},
		{"keeps inner runs", "well   so", "well   so"},
		{"empty", "\x01\x02", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "no limit", Truncate("no limit", 0))
	assert.Equal(t, "hello…", Truncate("hello world", 6))
	assert.Equal(t, "héll…", Truncate("héllo", 4))
}
