package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/auth"
	"github.com/openintel/achboard/internal/config"
	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/mailer"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// AuthService manages registration, login, and password lifecycle.
type AuthService struct {
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	tokens  *auth.TokenManager
	mail    mailer.Mailer
	site    config.SiteConfig
	authCfg config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, resets repository.PasswordResetRepository, tokens *auth.TokenManager, mail mailer.Mailer, site config.SiteConfig, authCfg config.AuthConfig) *AuthService {
	return &AuthService{users: users, resets: resets, tokens: tokens, mail: mail, site: site, authCfg: authCfg}
}

// RegisterInput describes an account registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult carries a signed token and its subject.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user account and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, apperrors.NewValidationError("username and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:         username,
		Email:            email,
		PasswordHash:     hashed,
		InvitesRemaining: s.site.InviteDefault,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issueToken(user)
}

// Login authenticates by username or email.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := s.users.GetByUsername(ctx, identifier)
	if err == pgx.ErrNoRows {
		user, err = s.users.GetByEmail(ctx, strings.ToLower(identifier))
	}
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

// ChangePassword replaces the caller's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error {
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewUnauthorized("current password incorrect")
	}
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hashed, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.users.Update(ctx, user)
}

// RequestPasswordReset issues a reset token and emails it to the account.
// Unknown addresses are ignored so the endpoint does not leak membership.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil
		}
		return err
	}

	reset := &domain.PasswordReset{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.PasswordResetTTLMinutes) * time.Minute),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return err
	}

	body := "A password reset was requested for your " + s.site.Name + " account.\n\n" +
		"Reset token: " + reset.Token + "\n\n" +
		"If you did not request this, you can ignore this message."
	return s.mail.Send(user.Email, s.site.Name+" password reset", body)
}

// ResetPassword redeems a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return err
	}
	if !reset.Usable(time.Now()) {
		return apperrors.NewUnauthorized("reset token expired or already used")
	}
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, reset.ID)
}

// EnsureAdmin creates or updates the bootstrap staff account.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("admin username, email, and password are required", nil)
	}
	hashed, err := auth.HashPassword(password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		existing.Email = strings.ToLower(email)
		existing.PasswordHash = hashed
		existing.IsStaff = true
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	user := &domain.User{
		Username:         username,
		Email:            strings.ToLower(email),
		PasswordHash:     hashed,
		IsStaff:          true,
		InvitesRemaining: s.site.InviteDefault,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
