package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (*TokenServiceImpl, error) {
	svc, err := NewTokenService(
		24*time.Hour,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		testSecret,
		NewMemoryStore(),
	)
	if err != nil {
		return nil, err
	}
	return svc.(*TokenServiceImpl), nil
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{"valid symmetric key configuration", false, testSecret, false},
		{"missing secret key", false, "", true},
		{"rsa without keys", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Hour, 2*time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey, nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestValidateAdminToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateAdminTokens(7)
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	now := time.Now()
	viewerToken, err := service.generateToken(jwt.MapClaims{
		"admin_id": 7, "role": "viewer", "token_type": TokenTypeAccess, "jti": "viewer-1",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	expiredToken, err := service.generateToken(jwt.MapClaims{
		"admin_id": 7, "role": RoleAdmin, "token_type": TokenTypeAccess, "jti": "old-1",
		"iat": now.Add(-2 * time.Hour).Unix(), "exp": now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": 7, "role": RoleAdmin, "token_type": TokenTypeAccess, "jti": "x",
		"iat": now.Unix(), "exp": now.Add(time.Hour).Unix(),
	})
	foreignToken, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		err       error
		tokenType string
	}{
		{"valid access token", accessToken, nil, TokenTypeAccess},
		{"valid refresh token", refreshToken, nil, TokenTypeRefresh},
		{"empty token", "", ErrTokenInvalid, ""},
		{"invalid token format", "invalid.token.format", ErrTokenInvalid, ""},
		{"wrong signature", foreignToken, ErrTokenInvalid, ""},
		{"expired", expiredToken, ErrTokenExpired, ""},
		{"non admin role", viewerToken, ErrInsufficientRole, TokenTypeAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAdminToken(ctx, tt.token)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(7), claims.AdminID)
			assert.Equal(t, RoleAdmin, claims.Role)
			assert.Equal(t, tt.tokenType, claims.TokenType)
			assert.NotEmpty(t, claims.TokenID)
			assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
		})
	}
}

func TestRevokeToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateAdminTokens(3)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(ctx, accessToken))

	_, err = service.ValidateAdminToken(ctx, accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// other tokens stay valid
	_, err = service.ValidateAdminToken(ctx, refreshToken)
	assert.NoError(t, err)

	assert.ErrorIs(t, service.RevokeToken(ctx, "invalid.token"), ErrTokenInvalid)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1", time.Minute))
	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "b", "2", 0))
	require.NoError(t, store.Delete(ctx, "b"))
	_, ok, _ = store.Get(ctx, "b")
	assert.False(t, ok)
}
