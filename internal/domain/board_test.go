package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Who Shot the Sheriff?", "who-shot-the-sheriff"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple---separators!!!here", "multiple-separators-here"},
		{"ALL CAPS 2024", "all-caps-2024"},
		{"???", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title, SlugMaxLength), "title %q", tt.title)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	slug := Slugify("alpha beta gamma", 10)
	assert.Equal(t, "alpha-beta", slug)

	// a cut that lands on a separator must not leave a trailing dash
	slug = Slugify("alpha beta gamma", 11)
	assert.Equal(t, "alpha-beta", slug)
}

func TestWasPublishedRecently(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	recent := &Board{PubDate: now.Add(-2 * time.Hour)}
	assert.True(t, recent.WasPublishedRecently(now))

	old := &Board{PubDate: now.Add(-25 * time.Hour)}
	assert.False(t, old.WasPublishedRecently(now))

	future := &Board{PubDate: now.Add(time.Hour)}
	assert.False(t, future.WasPublishedRecently(now))
}
