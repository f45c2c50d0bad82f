package handlers

import (
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/middleware"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminCookieConfig controls the admin_token session cookie
type AdminCookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// AdminAuthHandlerInterface defines the contract for admin auth handlers
type AdminAuthHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Check(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AdminAuthHandler implements AdminAuthHandlerInterface
type AdminAuthHandler struct {
	responder
	flow      businessflow.AdminAuthFlow
	validator *validator.Validate
	cookie    AdminCookieConfig
}

func NewAdminAuthHandler(flow businessflow.AdminAuthFlow, cookie AdminCookieConfig) AdminAuthHandlerInterface {
	return &AdminAuthHandler{
		flow:      flow,
		validator: validator.New(),
		cookie:    cookie,
	}
}

func (h *AdminAuthHandler) setSessionCookie(c fiber.Ctx, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     utils.AdminCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(maxAge) * time.Second),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
	})
}

// InitCaptcha starts the admin login by returning a rotate captcha challenge
// @Summary Admin captcha init
// @Description Initialize rotate captcha for admin login (returns base64 images and challenge ID)
// @Tags Admin Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminCaptchaInitResponse} "Captcha initialized"
// @Failure 503 {object} dto.APIResponse "Captcha disabled"
// @Failure 500 {object} dto.APIResponse "Failed to initialize captcha"
// @Router /api/v1/admin/auth/captcha/init [get]
func (h *AdminAuthHandler) InitCaptcha(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/auth/captcha/init")
	defer cancel()

	resp, err := h.flow.InitCaptcha(ctx)
	if err != nil {
		return h.flowError(c, err, "Admin captcha init failed", "ADMIN_CAPTCHA_INIT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha initialized", resp)
}

// Login verifies the captcha and credentials and opens an admin session
// @Summary Admin login
// @Description Verify captcha and authenticate admin with username/password. Also sets the HttpOnly admin_token cookie.
// @Tags Admin Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin login data"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or captcha"
// @Failure 401 {object} dto.APIResponse "Brak autoryzacji"
// @Failure 403 {object} dto.APIResponse "Admin inactive"
// @Failure 429 {object} dto.APIResponse "Rate limit exceeded"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/auth/login [post]
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/auth/login")
	defer cancel()

	result, err := h.flow.Login(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Login failed", "LOGIN_FAILED")
	}

	h.setSessionCookie(c, result.Session.AccessToken, result.Session.ExpiresIn)
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Check confirms the session and returns the admin behind it
// @Summary Admin session check
// @Tags Admin Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminCheckResponse} "Authenticated"
// @Failure 401 {object} dto.APIResponse "Brak autoryzacji"
// @Router /api/v1/admin/auth/check [get]
func (h *AdminAuthHandler) Check(c fiber.Ctx) error {
	claims, ok := middleware.GetAdminClaimsFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Brak autoryzacji", "UNAUTHORIZED", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/auth/check")
	defer cancel()

	resp, err := h.flow.Check(ctx, claims)
	if err != nil {
		return h.flowError(c, err, "Session check failed", "SESSION_CHECK_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Authenticated", resp)
}

// Logout revokes the current token and clears the session cookie
// @Summary Admin logout
// @Tags Admin Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse "Logged out"
// @Failure 401 {object} dto.APIResponse "Brak autoryzacji"
// @Router /api/v1/admin/auth/logout [post]
func (h *AdminAuthHandler) Logout(c fiber.Ctx) error {
	token, ok := middleware.GetAccessTokenFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Brak autoryzacji", "UNAUTHORIZED", nil)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/auth/logout")
	defer cancel()

	if err := h.flow.Logout(ctx, token); err != nil {
		return h.flowError(c, err, "Logout failed", "LOGOUT_FAILED")
	}

	h.setSessionCookie(c, "", -1)
	return h.SuccessResponse(c, fiber.StatusOK, "Logged out", nil)
}
