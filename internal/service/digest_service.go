package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/mailer"
	"github.com/openintel/achboard/internal/observability"
	"github.com/openintel/achboard/internal/repository"
)

// DigestService builds and sends notification digest emails.
type DigestService struct {
	users         repository.UserRepository
	boards        repository.BoardRepository
	notifications repository.NotificationRepository
	mail          mailer.Mailer
	site          config.SiteConfig
	concurrency   int
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewDigestService constructs the service.
func NewDigestService(
	users repository.UserRepository,
	boards repository.BoardRepository,
	notifications repository.NotificationRepository,
	mail mailer.Mailer,
	site config.SiteConfig,
	concurrency int,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DigestService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &DigestService{
		users:         users,
		boards:        boards,
		notifications: notifications,
		mail:          mail,
		site:          site,
		concurrency:   concurrency,
		metrics:       metrics,
		logger:        logger,
	}
}

// Digest is the assembled content for one user.
type Digest struct {
	User          *domain.User
	Since         time.Time
	NewBoards     []domain.Board
	Notifications []domain.Notification
}

// Empty reports whether the digest carries nothing worth sending.
func (d *Digest) Empty() bool {
	return len(d.NewBoards) == 0 && len(d.Notifications) == 0
}

// Build assembles the digest for a user. The window opens at the latest of
// the frequency window, the last successful delivery, and the user's join
// date, so nothing is reported twice and nothing predates the account.
func (s *DigestService) Build(ctx context.Context, user *domain.User, freq domain.DigestFrequency, now time.Time) (*Digest, error) {
	window, ok := freq.Window()
	if !ok {
		return &Digest{User: user, Since: now}, nil
	}
	since := now.Add(-window)

	status, err := s.notifications.GetDigestStatus(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if status.LastSuccess != nil && status.LastSuccess.After(since) {
		since = *status.LastSuccess
	}
	if user.JoinedAt.After(since) {
		since = user.JoinedAt
	}

	viewer := repository.Viewer{UserID: &user.ID, IsStaff: user.IsStaff}
	newBoards, err := s.boards.ListPublishedSince(ctx, viewer, since)
	if err != nil {
		return nil, err
	}
	notifications, err := s.notifications.ListUnreadSince(ctx, user.ID, since)
	if err != nil {
		return nil, err
	}

	return &Digest{
		User:          user,
		Since:         since,
		NewBoards:     newBoards,
		Notifications: notifications,
	}, nil
}

// SendAll builds and delivers digests for every subscriber of the given
// frequency. Users whose digest has no content are skipped without marking
// an attempt. Returns the number of digests actually sent.
func (s *DigestService) SendAll(ctx context.Context, freq domain.DigestFrequency, now time.Time) (int, error) {
	users, err := s.users.ListByDigestFrequency(ctx, freq)
	if err != nil {
		return 0, err
	}

	sent := make(chan struct{}, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range users {
		user := users[i]
		g.Go(func() error {
			ok, err := s.sendOne(gctx, &user, freq, now)
			if err != nil {
				// a single failed mailbox should not abort the whole run
				s.logger.Warn("digest delivery failed",
					zap.Error(err),
					zap.String("user_id", user.ID))
				if s.metrics != nil {
					s.metrics.DigestsSent.WithLabelValues("failed").Inc()
				}
				return nil
			}
			if ok {
				sent <- struct{}{}
				if s.metrics != nil {
					s.metrics.DigestsSent.WithLabelValues("sent").Inc()
				}
			} else if s.metrics != nil {
				s.metrics.DigestsSent.WithLabelValues("skipped").Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(sent)
	return len(sent), nil
}

func (s *DigestService) sendOne(ctx context.Context, user *domain.User, freq domain.DigestFrequency, now time.Time) (bool, error) {
	digest, err := s.Build(ctx, user, freq, now)
	if err != nil {
		return false, err
	}
	if digest.Empty() {
		return false, nil
	}

	status, err := s.notifications.GetDigestStatus(ctx, user.ID)
	if err != nil {
		return false, err
	}
	attempt := now
	status.LastAttempt = &attempt
	if err := s.notifications.SaveDigestStatus(ctx, status); err != nil {
		return false, err
	}

	subject := fmt.Sprintf("[%s] %s digest", s.site.Name, freq)
	if err := s.mail.Send(user.Email, subject, RenderDigest(digest, s.site)); err != nil {
		return false, err
	}

	status.LastSuccess = &attempt
	if err := s.notifications.SaveDigestStatus(ctx, status); err != nil {
		return false, err
	}
	return true, nil
}

// RenderDigest formats a digest as a plain-text email body.
func RenderDigest(digest *Digest, site config.SiteConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nHere is your %s activity since %s.\n",
		digest.User.Username, site.Name, digest.Since.Format("Jan 2, 2006 15:04 MST"))

	if len(digest.NewBoards) > 0 {
		b.WriteString("\nNew boards:\n")
		for _, board := range digest.NewBoards {
			fmt.Fprintf(&b, "  - %s\n    https://%s/boards/%s\n", board.Title, site.Domain, board.ID)
		}
	}
	if len(digest.Notifications) > 0 {
		b.WriteString("\nNotifications:\n")
		for _, n := range digest.Notifications {
			fmt.Fprintf(&b, "  - %s %s: %s\n", n.Verb, n.ObjectKind, n.ObjectLabel)
		}
	}
	fmt.Fprintf(&b, "\nManage your digest settings at https://%s/settings\n", site.Domain)
	return b.String()
}
