package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gardencms/internal/auth"
	"gardencms/internal/model"
)

// ClaimsLocalKey is where Authenticate stores the verified *auth.Claims.
const ClaimsLocalKey = "claims"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate reads a bearer token from the Authorization header. When
// required is false a missing or invalid token leaves the request anonymous.
func Authenticate(v TokenValidator, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
			}
			return c.Next()
		}

		claims, err := v.ValidateToken(token)
		if err != nil {
			if required {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
			}
			return c.Next()
		}
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

// RequireRole rejects anonymous callers with 401 and callers holding none of
// roles with 403. It must run after Authenticate.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		for _, r := range roles {
			if claims.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}

// ClaimsFrom returns the claims stored by Authenticate.
func ClaimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// IsAdmin reports whether the caller presented a valid ADMIN token.
func IsAdmin(c *fiber.Ctx) bool {
	claims, ok := ClaimsFrom(c)
	return ok && claims.Role == model.RoleAdmin
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	return bearerToken(header)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
