package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/repository"
	"github.com/amirphl/cleaning-orders/utils"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthFlow represents the admin authentication flow used by handlers
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error)
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error)
	Check(ctx context.Context, claims *services.AdminTokenClaims) (*dto.AdminCheckResponse, error)
	Logout(ctx context.Context, token string) error
}

// AdminAuthFlowImpl provides captcha-init, credential checks and session revocation
type AdminAuthFlowImpl struct {
	adminRepo      repository.AdminRepository
	tokenService   services.TokenService
	captchaSvc     services.CaptchaService
	captchaEnabled bool
}

// NewAdminAuthFlow creates the flow. With captchaEnabled false the login
// ignores challenge fields.
func NewAdminAuthFlow(adminRepo repository.AdminRepository, tokenService services.TokenService, captchaSvc services.CaptchaService, captchaEnabled bool) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		adminRepo:      adminRepo,
		tokenService:   tokenService,
		captchaSvc:     captchaSvc,
		captchaEnabled: captchaEnabled,
	}
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.AdminCaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "Captcha service not available", ErrCaptchaNotAvailable)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.AdminCaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.AdminLoginResponse, error) {
	// Validate request
	if req == nil || len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("ADMIN_LOGIN_VALIDATION_FAILED", "Admin login validation failed", ErrIncorrectPassword)
	}

	if af.captchaEnabled {
		if len(req.ChallengeID) == 0 {
			return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha challenge missing", ErrInvalidCaptcha)
		}
		if af.captchaSvc == nil || !af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle) {
			return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrInvalidCaptcha)
		}
	}

	admin, err := af.adminRepo.ByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewBusinessError("ADMIN_INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	accessToken, refreshToken, err := af.tokenService.GenerateAdminTokens(admin.ID)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	now := utils.UTCNow()
	if err := af.adminRepo.Update(ctx, admin.ID, map[string]any{"last_login_at": now, "updated_at": now}); err != nil {
		utils.LogKV("warn", "failed to stamp admin login", map[string]any{"admin_id": admin.ID, "error": err.Error()})
	} else {
		admin.LastLoginAt = &now
	}

	fields := metadata.logFields()
	fields["admin_id"] = admin.ID
	utils.LogKV("info", "admin logged in", fields)

	return &dto.AdminLoginResponse{
		Admin:   ToAdminDTOModel(*admin),
		Session: ToAdminSessionDTO(accessToken, refreshToken, af.tokenService.AccessTokenTTL()),
	}, nil
}

// Check resolves the admin behind already validated claims
func (af *AdminAuthFlowImpl) Check(ctx context.Context, claims *services.AdminTokenClaims) (*dto.AdminCheckResponse, error) {
	if claims == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	admin, err := af.adminRepo.ByID(ctx, claims.AdminID)
	if err != nil {
		return nil, NewBusinessError("ADMIN_LOOKUP_FAILED", "Failed to lookup admin", err)
	}
	if admin == nil {
		return nil, NewBusinessError("ADMIN_NOT_FOUND", "Admin not found", ErrAdminNotFound)
	}
	if !utils.IsTrue(admin.IsActive) {
		return nil, NewBusinessError("ADMIN_INACTIVE", "Admin account is inactive", ErrAdminInactive)
	}
	return &dto.AdminCheckResponse{
		Authenticated: true,
		Role:          claims.Role,
		ExpiresAt:     formatTime(claims.ExpiresAt),
		Admin:         ToAdminDTOModel(*admin),
	}, nil
}

// Logout revokes the token until it expires
func (af *AdminAuthFlowImpl) Logout(ctx context.Context, token string) error {
	if err := af.tokenService.RevokeToken(ctx, token); err != nil {
		return NewBusinessError("TOKEN_REVOKE_FAILED", "Failed to revoke token", err)
	}
	return nil
}
