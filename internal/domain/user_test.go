package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFrequencyWindow(t *testing.T) {
	window, ok := DigestDaily.Window()
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, window)

	window, ok = DigestWeekly.Window()
	require.True(t, ok)
	assert.Equal(t, 7*24*time.Hour, window)

	_, ok = DigestNever.Window()
	assert.False(t, ok)
}

func TestParseDigestFrequency(t *testing.T) {
	for name, want := range map[string]DigestFrequency{
		"never":  DigestNever,
		"daily":  DigestDaily,
		"weekly": DigestWeekly,
	} {
		got, ok := ParseDigestFrequency(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, ok := ParseDigestFrequency("fortnightly")
	assert.False(t, ok)
}
