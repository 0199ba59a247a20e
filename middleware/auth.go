package middleware

import (
	"strings"

	"parcel-delivery/constants"
	"parcel-delivery/services/token"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer credentials and gates routes by role.
type AuthMiddleware struct {
	tokens *token.Service
}

func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireRoles creates a middleware that allows only the given roles.
func (m *AuthMiddleware) RequireRoles(roles ...string) fiber.Handler {
	return m.isAuthenticated(roles)
}

// RequireAuthentication only requires a valid token without a specific role.
func (m *AuthMiddleware) RequireAuthentication() fiber.Handler {
	return m.isAuthenticated([]string{constants.RoleAny})
}

// isAuthenticated checks for a valid JWT token in the Authorization header or
// the access cookie, verifies it, and attaches the resolved identity to the
// request context. That identity is the sole source of "acting user" for all
// downstream authorization checks.
func (m *AuthMiddleware) isAuthenticated(allowedRoles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var tokenString string

		if authHeader != "" {
			// Validate Bearer Token
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Success: false,
					Message: "Invalid authorization header format",
					Status:  fiber.StatusUnauthorized,
				})
			}
			tokenString = tokenParts[1]
		} else {
			// Try to get token from cookie as fallback
			tokenString = c.Cookies("access")
			if tokenString == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Success: false,
					Message: "Authorization token missing",
					Status:  fiber.StatusUnauthorized,
				})
			}
		}

		claims, err := m.tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Success: false,
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if claims.Status != constants.StatusActive {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Success: false,
				Message: "Account is not active",
				Status:  fiber.StatusForbidden,
			})
		}

		if !roleAllowed(claims.Role, allowedRoles) {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Success: false,
				Message: "Insufficient permissions",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals("user", claims)

		return c.Next()
	}
}

func roleAllowed(role string, allowedRoles []string) bool {
	for _, allowed := range allowedRoles {
		if allowed == constants.RoleAny || allowed == role {
			return true
		}
	}
	return false
}

// CurrentUser returns the identity attached by the auth middleware.
func CurrentUser(c *fiber.Ctx) (*token.Claims, bool) {
	claims, ok := c.Locals("user").(*token.Claims)
	return claims, ok
}
