package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the default time-to-live for admin access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the default time-to-live for admin refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// AdminCookieName carries the admin access token for browser sessions
	AdminCookieName = "admin_token"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Order constants
const (
	// TrackingCodeLength is the number of characters in a public tracking code
	TrackingCodeLength = 12

	// DefaultBusinessTimezone is used to decide what "today" means for preferred dates
	DefaultBusinessTimezone = "Europe/Warsaw"

	// DateLayout is the ISO-8601 calendar date layout used on the wire
	DateLayout = "2006-01-02"

	// DefaultOrderPageSize and MaxOrderPageSize bound admin listings
	DefaultOrderPageSize = 100
	MaxOrderPageSize     = 500

	// CurrencySymbol is appended to prices in customer-facing documents
	CurrencySymbol = "zł"
)
