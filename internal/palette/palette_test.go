package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#FF8800", "#ff8800", true},
		{"ff8800", "#ff8800", true},
		{" #0af ", "#00aaff", true},
		{"", "", false},
		{"#12345", "", false},
		{"not-a-color", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextAvoidsUsedColors(t *testing.T) {
	t.Parallel()

	var used []string
	seen := map[string]bool{}
	for range 12 {
		c := Next(used)
		assert.False(t, seen[c], "color %s handed out twice", c)
		seen[c] = true
		used = append(used, c)
	}

	assert.Equal(t, Generate(0), Next(nil))
	// an uppercase duplicate still counts as taken
	assert.Equal(t, Generate(2), Next([]string{upper(Generate(1))}))
}

func TestGenerateIsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Generate(3), Generate(3))
	assert.Equal(t, Generate(3), Generate(-3))
	assert.NotEqual(t, Generate(0), Generate(1))
	_, err := Normalize(Generate(7))
	assert.NoError(t, err)
}

func TestForeground(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#000000", Foreground("#ffffff"))
	assert.Equal(t, "#ffffff", Foreground("#101010"))
	assert.Equal(t, "#ffffff", Foreground("garbage"))
}

func TestFade(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#ff0000", Fade("#ff0000", "#000000", 0))
	assert.Equal(t, "#000000", Fade("#ff0000", "#000000", 1))
	assert.Equal(t, "bad", Fade("bad", "#000000", 0.5))
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
