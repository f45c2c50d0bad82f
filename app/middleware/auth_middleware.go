// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/gofiber/fiber/v3"
)

// Locals keys set by AdminAuthenticate
const (
	LocalAdminID     = "admin_id"
	LocalTokenID     = "token_id"
	LocalTokenClaims = "token_claims"
	LocalAccessToken = "access_token"
)

// AuthMiddleware handles JWT token validation for admin endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// extractToken reads the bearer token, falling back to the admin session cookie
func extractToken(c fiber.Ctx) (string, string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if cookie := c.Cookies(utils.AdminCookieName); cookie != "" {
			return cookie, "", ""
		}
		return "", "Authorization header is required", "MISSING_AUTHORIZATION_HEADER"
	}

	// Check Bearer format
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT"
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", "Access token is required", "MISSING_ACCESS_TOKEN"
	}
	return token, "", ""
}

// AdminAuthenticate validates admin JWTs from the Authorization header or the
// admin_token cookie and stores the claims in locals
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, msg, code := extractToken(c)
		if token == "" {
			return unauthorized(c, msg, code)
		}

		adminClaims, err := m.tokenService.ValidateAdminToken(c.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInsufficientRole):
				return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
					Success: false,
					Message: "Admin role required",
					Error:   dto.ErrorDetail{Code: "INSUFFICIENT_ROLE"},
				})
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			default:
				log.Println("Admin token validation failed", err)
				return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
			}
		}

		// Refresh tokens only mint new sessions
		if adminClaims.TokenType != services.TokenTypeAccess {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}

		c.Locals(LocalAdminID, adminClaims.AdminID)
		c.Locals(LocalTokenID, adminClaims.TokenID)
		c.Locals(LocalTokenClaims, adminClaims)
		c.Locals(LocalAccessToken, token)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// GetAdminIDFromContext extracts admin ID from the request context
func GetAdminIDFromContext(c fiber.Ctx) (uint, bool) {
	adminID, ok := c.Locals(LocalAdminID).(uint)
	return adminID, ok
}

// GetAdminClaimsFromContext extracts token claims from the request context
func GetAdminClaimsFromContext(c fiber.Ctx) (*services.AdminTokenClaims, bool) {
	claims, ok := c.Locals(LocalTokenClaims).(*services.AdminTokenClaims)
	return claims, ok
}

// GetAccessTokenFromContext returns the raw token that authenticated the request
func GetAccessTokenFromContext(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals(LocalAccessToken).(string)
	return token, ok && token != ""
}
