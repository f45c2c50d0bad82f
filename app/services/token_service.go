package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/cleaning-orders/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Token service error constants
var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrInsufficientRole = errors.New("token does not carry the admin role")
)

// Token types and roles
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	RoleAdmin        = "admin"
)

const revokedKeyPrefix = "revoked:"

// TokenService handles admin JWT generation, validation and revocation
type TokenService interface {
	GenerateAdminTokens(adminID uint) (accessToken, refreshToken string, err error)
	ValidateAdminToken(ctx context.Context, token string) (*AdminTokenClaims, error)
	RevokeToken(ctx context.Context, token string) error
	AccessTokenTTL() time.Duration
}

// AdminTokenClaims represents claims for admin JWTs
type AdminTokenClaims struct {
	AdminID   uint      `json:"admin_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
	TokenID   string    `json:"jti"`
}

// TokenServiceImpl implements TokenService
type TokenServiceImpl struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	signingMethod   jwt.SigningMethod
	privateKey      *rsa.PrivateKey
	publicKey       *rsa.PublicKey
	secretKey       []byte
	useRSAKeys      bool
	issuer          string
	audience        string
	revoked         KeyValueStore
}

// NewTokenService creates a new token service. A nil revocation store
// falls back to process memory.
func NewTokenService(accessTokenTTL, refreshTokenTTL time.Duration, issuer, audience string, useRSAKeys bool, privateKeyPEM, publicKeyPEM, secretKey string, revoked KeyValueStore) (TokenService, error) {
	var privateKey *rsa.PrivateKey
	var publicKey *rsa.PublicKey
	var secretKeyBytes []byte
	var signingMethod jwt.SigningMethod

	if useRSAKeys {
		var err error
		privateKey, publicKey, err = parseRSAKeys(privateKeyPEM, publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA keys: %w", err)
		}
		signingMethod = jwt.SigningMethodRS256
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		secretKeyBytes = []byte(secretKey)
		signingMethod = jwt.SigningMethodHS256
	}

	if revoked == nil {
		revoked = NewMemoryStore()
	}

	return &TokenServiceImpl{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		signingMethod:   signingMethod,
		privateKey:      privateKey,
		publicKey:       publicKey,
		secretKey:       secretKeyBytes,
		useRSAKeys:      useRSAKeys,
		issuer:          issuer,
		audience:        audience,
		revoked:         revoked,
	}, nil
}

// parseRSAKeys parses RSA private and public keys from PEM format
func parseRSAKeys(privateKeyPEM, publicKeyPEM string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, nil, fmt.Errorf("both private and public keys are required")
	}

	privateKeyBlock, _ := pem.Decode([]byte(privateKeyPEM))
	if privateKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode private key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyBlock, _ := pem.Decode([]byte(publicKeyPEM))
	if publicKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("public key is not RSA")
	}

	return privateKey, rsaPublicKey, nil
}

func (s *TokenServiceImpl) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// GenerateAdminTokens generates access and refresh tokens for an admin
func (s *TokenServiceImpl) GenerateAdminTokens(adminID uint) (accessToken, refreshToken string, err error) {
	now := utils.UTCNow()

	accessTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}

	refreshTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}

	accessToken, err = s.generateToken(jwt.MapClaims{
		"admin_id":   adminID,
		"role":       RoleAdmin,
		"token_type": TokenTypeAccess,
		"jti":        accessTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.accessTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(jwt.MapClaims{
		"admin_id":   adminID,
		"role":       RoleAdmin,
		"token_type": TokenTypeRefresh,
		"jti":        refreshTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.refreshTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// parse verifies the signature and expiry and extracts the claims
func (s *TokenServiceImpl) parse(token string) (*AdminTokenClaims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if s.useRSAKeys {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.publicKey, nil
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	adminID, ok := claims["admin_id"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	tokenType, ok := claims["token_type"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)

	if utils.UTCNow().After(time.Unix(int64(expiresAt), 0)) {
		return nil, ErrTokenExpired
	}

	return &AdminTokenClaims{
		AdminID:   uint(adminID),
		Role:      role,
		TokenType: tokenType,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(int64(issuedAt), 0),
		ExpiresAt: time.Unix(int64(expiresAt), 0),
	}, nil
}

// ValidateAdminToken validates an admin JWT and returns admin-specific claims
func (s *TokenServiceImpl) ValidateAdminToken(ctx context.Context, token string) (*AdminTokenClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	_, revoked, err := s.revoked.Get(ctx, revokedKeyPrefix+claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	if claims.Role != RoleAdmin {
		return claims, ErrInsufficientRole
	}
	return claims, nil
}

// RevokeToken blacklists the token id until the token would have expired anyway
func (s *TokenServiceImpl) RevokeToken(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Set(ctx, revokedKeyPrefix+claims.TokenID, claims.ExpiresAt.UTC().Format(time.RFC3339), ttl)
}

// generateToken creates a signed JWT token
func (s *TokenServiceImpl) generateToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.signingMethod, claims)

	if s.useRSAKeys {
		return token.SignedString(s.privateKey)
	}
	return token.SignedString(s.secretKey)
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
