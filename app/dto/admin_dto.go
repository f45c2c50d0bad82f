package dto

type AdminDTO struct {
	ID          uint    `json:"id" example:"1"`
	UUID        string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Username    string  `json:"username" example:"admin"`
	IsActive    *bool   `json:"is_active" example:"true"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2024-01-15T10:30:00Z"`
	CreatedAt   string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type AdminSessionDTO struct {
	AccessToken  string `json:"access_token" example:"jwt"`
	RefreshToken string `json:"refresh_token" example:"jwt"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	TokenType    string `json:"token_type" example:"Bearer"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type AdminCaptchaInitResponse struct {
	ChallengeID       string `json:"challenge_id"`
	MasterImageBase64 string `json:"master_image_base64"`
	ThumbImageBase64  string `json:"thumb_image_base64"`
}

// AdminLoginRequest carries credentials and, when the captcha is on, the solved challenge
type AdminLoginRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=255" example:"admin"`
	Password    string  `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	ChallengeID string  `json:"challenge_id,omitempty" validate:"omitempty,max=64"`
	UserAngle   float64 `json:"user_angle,omitempty"`
}

type AdminLoginResponse struct {
	Admin   AdminDTO        `json:"admin"`
	Session AdminSessionDTO `json:"session"`
}

// AdminCheckResponse confirms the session and who owns it
type AdminCheckResponse struct {
	Authenticated bool     `json:"authenticated" example:"true"`
	Role          string   `json:"role" example:"admin"`
	ExpiresAt     string   `json:"expires_at" example:"2024-01-16T10:30:00Z"`
	Admin         AdminDTO `json:"admin"`
}
