package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokens returns fixed claims or a fixed error
type stubTokens struct {
	claims *services.AdminTokenClaims
	err    error
}

func (s stubTokens) GenerateAdminTokens(uint) (string, string, error) { return "", "", nil }
func (s stubTokens) ValidateAdminToken(context.Context, string) (*services.AdminTokenClaims, error) {
	return s.claims, s.err
}
func (s stubTokens) RevokeToken(context.Context, string) error { return nil }
func (s stubTokens) AccessTokenTTL() time.Duration             { return time.Hour }

func newAuthApp(tokens services.TokenService) *fiber.App {
	app := fiber.New()
	app.Get("/admin", NewAuthMiddleware(tokens).AdminAuthenticate(), func(c fiber.Ctx) error {
		id, _ := GetAdminIDFromContext(c)
		token, _ := GetAccessTokenFromContext(c)
		return c.JSON(fiber.Map{"admin_id": id, "token": token})
	})
	return app
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error.Code
}

func TestAdminAuthenticate_Rejections(t *testing.T) {
	accessClaims := &services.AdminTokenClaims{AdminID: 7, Role: services.RoleAdmin, TokenType: services.TokenTypeAccess}

	tests := []struct {
		name       string
		tokens     stubTokens
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", stubTokens{claims: accessClaims}, "", fiber.StatusUnauthorized, "MISSING_AUTHORIZATION_HEADER"},
		{"not bearer", stubTokens{claims: accessClaims}, "Basic abc", fiber.StatusUnauthorized, "INVALID_AUTHORIZATION_FORMAT"},
		{"expired", stubTokens{err: services.ErrTokenExpired}, "Bearer t", fiber.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"invalid", stubTokens{err: services.ErrTokenInvalid}, "Bearer t", fiber.StatusUnauthorized, "TOKEN_INVALID"},
		{"revoked", stubTokens{err: services.ErrTokenRevoked}, "Bearer t", fiber.StatusUnauthorized, "TOKEN_REVOKED"},
		{"wrong role", stubTokens{claims: &services.AdminTokenClaims{Role: "customer"}, err: services.ErrInsufficientRole}, "Bearer t", fiber.StatusForbidden, "INSUFFICIENT_ROLE"},
		{"refresh token", stubTokens{claims: &services.AdminTokenClaims{AdminID: 7, Role: services.RoleAdmin, TokenType: services.TokenTypeRefresh}}, "Bearer t", fiber.StatusUnauthorized, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newAuthApp(tt.tokens).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp))
		})
	}
}

func TestAdminAuthenticate_RealTokens(t *testing.T) {
	tokens, err := services.NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-for-jwt-signing-32-chars", services.NewMemoryStore())
	require.NoError(t, err)
	access, refresh, err := tokens.GenerateAdminTokens(42)
	require.NoError(t, err)
	app := newAuthApp(tokens)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			AdminID uint   `json:"admin_id"`
			Token   string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, uint(42), body.AdminID)
		assert.Equal(t, access, body.Token)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: utils.AdminCookieName, Value: access})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("refresh token is not a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked", func(t *testing.T) {
		require.NoError(t, tokens.RevokeToken(context.Background(), access))
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_REVOKED", decodeError(t, resp))
	})
}
