package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/mailer"
	"github.com/openintel/achboard/internal/observability"
	"github.com/openintel/achboard/internal/persistence"
	"github.com/openintel/achboard/internal/repository"
	"github.com/openintel/achboard/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:   "achctl",
		Short: "Administrative tasks for the analysis board service",
	}
	root.AddCommand(createAdminCmd(), sendDigestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env holds the shared wiring the admin commands need.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return &env{cfg: cfg, logger: logger, pg: pg}, nil
}

func (e *env) close() {
	e.pg.Close()
	_ = e.logger.Sync()
}

func createAdminCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create or update the staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if username == "" {
				username = e.cfg.Admin.Username
			}
			if email == "" {
				email = e.cfg.Admin.Email
			}
			if password == "" {
				password = e.cfg.Admin.Password
			}

			userRepo := repository.NewUserRepository(e.pg.PoolHandle())
			resetRepo := repository.NewPasswordResetRepository(e.pg.PoolHandle())
			tokens := auth.NewTokenManager(e.cfg.Auth.JWTSecret, e.cfg.Auth.AccessTokenTTLMinutes)
			mail := mailer.NewSMTPMailer(e.cfg.Mail, e.logger)
			authService := service.NewAuthService(userRepo, resetRepo, tokens, mail, e.cfg.Site, e.cfg.Auth)

			admin, err := authService.EnsureAdmin(ctx, username, email, password)
			if err != nil {
				return err
			}
			cmd.Printf("staff account %s (%s) ready\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "staff username (defaults to ADMIN_USERNAME)")
	cmd.Flags().StringVar(&email, "email", "", "staff email (defaults to ADMIN_EMAIL_ADDRESS)")
	cmd.Flags().StringVar(&password, "password", "", "staff password (defaults to ADMIN_PASSWORD)")
	return cmd
}

func sendDigestCmd() *cobra.Command {
	var frequency string

	cmd := &cobra.Command{
		Use:   "send-digest",
		Short: "Send the daily or weekly digest emails now",
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, ok := domain.ParseDigestFrequency(frequency)
			if !ok || freq == domain.DigestNever {
				return fmt.Errorf("frequency must be daily or weekly, got %q", frequency)
			}

			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			pool := e.pg.PoolHandle()
			userRepo := repository.NewUserRepository(pool)
			boardRepo := repository.NewBoardRepository(pool)
			notificationRepo := repository.NewNotificationRepository(pool)
			mail := mailer.NewSMTPMailer(e.cfg.Mail, e.logger)
			metrics := observability.NewMetrics()
			digests := service.NewDigestService(userRepo, boardRepo, notificationRepo, mail, e.cfg.Site, e.cfg.Digest.Concurrency, metrics, e.logger)

			sent, err := digests.SendAll(ctx, freq, time.Now())
			if err != nil {
				return err
			}
			cmd.Printf("sent %d %s digests\n", sent, freq)
			return nil
		},
	}
	cmd.Flags().StringVar(&frequency, "frequency", "daily", "digest frequency to send (daily or weekly)")
	return cmd
}
