package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/openintel/achboard/internal/api/http"
	"github.com/openintel/achboard/internal/api/http/handlers"
	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/events"
	"github.com/openintel/achboard/internal/mailer"
	"github.com/openintel/achboard/internal/observability"
	"github.com/openintel/achboard/internal/persistence"
	"github.com/openintel/achboard/internal/repository"
	"github.com/openintel/achboard/internal/service"
	"github.com/openintel/achboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	boardRepo := repository.NewBoardRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	hypothesisRepo := repository.NewHypothesisRepository(pool)
	evidenceRepo := repository.NewEvidenceRepository(pool)
	tagRepo := repository.NewTagRepository(pool)
	evaluationRepo := repository.NewEvaluationRepository(pool)
	followerRepo := repository.NewFollowerRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	invitationRepo := repository.NewInvitationRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	mail := mailer.NewSMTPMailer(cfg.Mail, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	permissionService := service.NewPermissionService(boardRepo, permissionRepo)
	authService := service.NewAuthService(userRepo, resetRepo, tokens, mail, cfg.Site, cfg.Auth)
	boardService := service.NewBoardService(service.BoardDependencies{
		BoardRepo:      boardRepo,
		PermissionRepo: permissionRepo,
		HypothesisRepo: hypothesisRepo,
		EvidenceRepo:   evidenceRepo,
		TagRepo:        tagRepo,
		EvaluationRepo: evaluationRepo,
		FollowerRepo:   followerRepo,
		HistoryRepo:    historyRepo,
		StatsRepo:      statsRepo,
		Permissions:    permissionService,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Cache:          redis,
		Site:           cfg.Site,
	})
	elementService := service.NewElementService(hypothesisRepo, evidenceRepo, tagRepo, followerRepo, historyRepo, permissionService, dispatcher)
	teamService := service.NewTeamService(teamRepo, userRepo, dispatcher)
	notificationService := service.NewNotificationService(notificationRepo, followerRepo, userRepo, permissionService, logger)
	notificationService.RegisterHandlers(dispatcher)
	profileService := service.NewProfileService(userRepo, boardRepo, hypothesisRepo, evidenceRepo, evaluationRepo)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, mail, cfg.Site)
	siteService := service.NewSiteService(newsRepo, statsRepo, boardRepo, redis, cfg.Site)
	digestService := service.NewDigestService(userRepo, boardRepo, notificationRepo, mail, cfg.Site, cfg.Digest.Concurrency, metrics, logger)

	worker.RegisterMetadataEnqueue(dispatcher, redis, cfg.Scraper.QueueKey, logger)
	metadataWorker := worker.NewMetadataWorker(redis, cfg.Scraper, evidenceRepo, metrics, logger)
	go metadataWorker.Run(ctx)

	digestScheduler := worker.NewDigestScheduler(cfg.Digest, digestService, logger)
	digestScheduler.Start()
	defer digestScheduler.Stop()

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Boards:         handlers.NewBoardsHandler(boardService),
		Elements:       handlers.NewElementsHandler(elementService),
		Teams:          handlers.NewTeamsHandler(teamService),
		Profiles:       handlers.NewProfilesHandler(profileService, notificationService, invitationService),
		Site:           handlers.NewSiteHandler(siteService, cfg.Site),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
