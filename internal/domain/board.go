package domain

import (
	"strings"
	"time"
)

const (
	BoardTitleMaxLength = 200
	BoardDescMaxLength  = 255
	SlugMaxLength       = 72
)

// Board is an ACH matrix with hypotheses, evidence, and evaluations.
type Board struct {
	ID        string
	Title     string
	Slug      string
	Desc      string
	CreatorID *string
	PubDate   time.Time
	Removed   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WasPublishedRecently reports whether the board was published within the last day.
func (b *Board) WasPublishedRecently(now time.Time) bool {
	return !b.PubDate.After(now) && now.Sub(b.PubDate) <= 24*time.Hour
}

// Slugify produces a URL-safe slug from a title, truncated to max runes.
func Slugify(title string, max int) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	b.Grow(len(title))
	lastDash := true
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if max > 0 && len(slug) > max {
		slug = strings.Trim(slug[:max], "-")
	}
	return slug
}

// BoardFollower tracks a user's relationship to a board for notifications.
type BoardFollower struct {
	BoardID       string
	UserID        string
	IsCreator     bool
	IsContributor bool
	IsEvaluator   bool
	UpdatedAt     time.Time
}

// ProjectNews is a front-page news item.
type ProjectNews struct {
	ID       string
	Content  string
	PubDate  time.Time
	AuthorID *string
}
