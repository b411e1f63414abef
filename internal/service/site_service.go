package service

import (
	"context"
	"time"

	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/persistence"
	"github.com/openintel/achboard/internal/repository"
)

// SiteService serves the front page: news, cached activity counts, and the
// latest boards.
type SiteService struct {
	news   repository.NewsRepository
	stats  repository.StatsRepository
	boards repository.BoardRepository
	cache  *persistence.Redis
	site   config.SiteConfig
}

// NewSiteService constructs the service.
func NewSiteService(news repository.NewsRepository, stats repository.StatsRepository, boards repository.BoardRepository, cache *persistence.Redis, site config.SiteConfig) *SiteService {
	return &SiteService{news: news, stats: stats, boards: boards, cache: cache, site: site}
}

// Overview is the front-page payload.
type Overview struct {
	SiteName     string                 `json:"site_name"`
	Counts       repository.SiteCounts  `json:"counts"`
	News         []domain.ProjectNews   `json:"news"`
	LatestBoards []domain.Board         `json:"latest_boards"`
}

const (
	frontPageNewsMax   = 5
	frontPageBoardsMax = 5
	statsCacheKey      = "achboard:site-counts"
)

// Overview builds the front page for the given caller. Counts are cached
// in Redis since they hit every table.
func (s *SiteService) Overview(ctx context.Context, actor *domain.User) (*Overview, error) {
	counts, err := persistence.GetOrSetJSON(ctx, s.cache, statsCacheKey, s.site.StatsCacheTTL(),
		func(ctx context.Context) (repository.SiteCounts, error) {
			return s.stats.SiteCounts(ctx)
		})
	if err != nil {
		return nil, err
	}

	news, err := s.news.ListCurrent(ctx, time.Now(), frontPageNewsMax)
	if err != nil {
		return nil, err
	}
	latest, err := s.boards.ListReadable(ctx, viewerFor(actor), frontPageBoardsMax, 0)
	if err != nil {
		return nil, err
	}

	return &Overview{
		SiteName:     s.site.Name,
		Counts:       counts,
		News:         news,
		LatestBoards: latest,
	}, nil
}

// PublishNews adds a front-page news item. Staff only, enforced by the
// route.
func (s *SiteService) PublishNews(ctx context.Context, actor *domain.User, content string, pubDate time.Time) (*domain.ProjectNews, error) {
	news := &domain.ProjectNews{
		Content:  content,
		PubDate:  pubDate,
		AuthorID: &actor.ID,
	}
	if err := s.news.Create(ctx, news); err != nil {
		return nil, err
	}
	return news, nil
}

// ReadableBoards lists boards for the sitemap.
func (s *SiteService) ReadableBoards(ctx context.Context, limit int) ([]domain.Board, error) {
	return s.boards.ListReadable(ctx, repository.Viewer{}, limit, 0)
}
