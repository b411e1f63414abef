package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.load(c)
	if err != nil {
		return err
	}
	if principal == nil {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads the principal when a bearer token is present but lets
// anonymous requests through. Routes that are readable by anyone use this
// so board permissions can still distinguish registered callers.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	principal, err := m.load(c)
	if err != nil {
		return err
	}
	if principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) load(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return &Principal{User: user}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
