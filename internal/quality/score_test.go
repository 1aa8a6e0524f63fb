package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"only control characters", "\n\t\r\x00", 0},
		{"dense", "abc", 1003},
		{"padded", "a b c", 603},
		{"punctuation only", "---", 0},
		{"digits count as alphanumeric", "₹ 1,200", 4 + 1000*4/7},
		{"non-latin letters", "счёт", 4 + 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.text))
		})
	}
}

func TestScore_PaddingLowersScore(t *testing.T) {
	assert.Less(t, Score("a b c"), Score("abc"))
}

func TestScore_MoreContentScoresHigher(t *testing.T) {
	short := "Invoice 1"
	long := strings.Repeat(short+" ", 40)
	assert.Greater(t, Score(long), Score(short))
}
