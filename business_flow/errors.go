package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidationFailed           = errors.New("validation failed")
	ErrOrderNotFound              = errors.New("order not found")
	ErrInvalidStatus              = errors.New("invalid order status")
	ErrStatusTransitionNotAllowed = errors.New("status transition not allowed")
	ErrUnknownAddOn               = errors.New("unknown add-on")
	ErrNotifierFailed             = errors.New("notification delivery failed")
	ErrTrackingCodeExhausted      = errors.New("could not allocate a unique tracking code")

	ErrAdminNotFound       = errors.New("admin not found")
	ErrAdminInactive       = errors.New("admin account is inactive")
	ErrIncorrectPassword   = errors.New("incorrect password")
	ErrInvalidCaptcha      = errors.New("invalid captcha")
	ErrCaptchaNotAvailable = errors.New("captcha not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// FieldError is one violated rule
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError carries every violated rule of a submission, in field order
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Has reports whether field failed rule
func (e *ValidationError) Has(field, rule string) bool {
	for _, f := range e.Fields {
		if f.Field == field && (rule == "" || f.Rule == rule) {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// AsValidationError extracts the field violations from err
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ErrorCode returns the BusinessError code in err's chain, or ""
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsInvalidStatus(err error) bool {
	return errors.Is(err, ErrInvalidStatus)
}

func IsStatusTransitionNotAllowed(err error) bool {
	return errors.Is(err, ErrStatusTransitionNotAllowed)
}

func IsUnknownAddOn(err error) bool {
	return errors.Is(err, ErrUnknownAddOn)
}

func IsNotifierFailed(err error) bool {
	return errors.Is(err, ErrNotifierFailed)
}

func IsTrackingCodeExhausted(err error) bool {
	return errors.Is(err, ErrTrackingCodeExhausted)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsCaptchaNotAvailable(err error) bool {
	return errors.Is(err, ErrCaptchaNotAvailable)
}
