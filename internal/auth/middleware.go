package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// Middleware validates bearer tokens on the dashboard save endpoints. It
// is only installed when admin auth is enabled; the default deployment
// keeps the dashboard open.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	if _, err := m.tokens.ParseToken(parts[1]); err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	return c.Next()
}
