package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
)

func TestDigestEmpty(t *testing.T) {
	digest := &Digest{User: &domain.User{Username: "ana"}}
	assert.True(t, digest.Empty())

	digest.NewBoards = []domain.Board{{Title: "Board"}}
	assert.False(t, digest.Empty())

	digest = &Digest{
		User:          &domain.User{Username: "ana"},
		Notifications: []domain.Notification{{Verb: domain.VerbAdded}},
	}
	assert.False(t, digest.Empty())
}

func TestRenderDigest(t *testing.T) {
	site := config.SiteConfig{Name: "Open Synthesis", Domain: "example.org"}
	digest := &Digest{
		User:  &domain.User{Username: "ana"},
		Since: time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC),
		NewBoards: []domain.Board{
			{ID: "board-1", Title: "Who leaked the memo?"},
		},
		Notifications: []domain.Notification{
			{Verb: domain.VerbAdded, ObjectKind: domain.ObjectEvidence, ObjectLabel: "New filing"},
		},
	}

	body := RenderDigest(digest, site)

	assert.Contains(t, body, "Hello ana,")
	assert.Contains(t, body, "Who leaked the memo?")
	assert.Contains(t, body, "https://example.org/boards/board-1")
	assert.Contains(t, body, "added evidence: New filing")
	assert.Contains(t, body, "https://example.org/settings")
}

func TestRenderDigestOmitsEmptySections(t *testing.T) {
	site := config.SiteConfig{Name: "Open Synthesis", Domain: "example.org"}
	digest := &Digest{
		User:      &domain.User{Username: "ana"},
		Since:     time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC),
		NewBoards: []domain.Board{{ID: "board-1", Title: "Board"}},
	}

	body := RenderDigest(digest, site)
	assert.NotContains(t, body, "Notifications:")
}
