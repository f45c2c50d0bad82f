// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// requestTimeout bounds the work a handler hands to a flow
const requestTimeout = 30 * time.Second

// responder renders the standard APIResponse envelope
type responder struct{}

// ErrorResponse standard JSON error
func (responder) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (responder) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validationFailed renders struct-tag violations of a request body
func (r responder) validationFailed(c fiber.Ctx, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", []string{err.Error()})
	}
	validationErrors := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, getValidationErrorMessage(fe))
	}
	return r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
}

// flowError maps a business flow error onto a status code. Unknown errors are
// logged and answered with an opaque 500.
func (r responder) flowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	if ve, ok := businessflow.AsValidationError(err); ok {
		violations := make([]dto.FieldViolation, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			violations = append(violations, dto.FieldViolation{Field: f.Field, Rule: f.Rule, Message: f.Message})
		}
		return r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", violations)
	}

	switch {
	case businessflow.IsOrderNotFound(err):
		return r.ErrorResponse(c, fiber.StatusNotFound, "Nie znaleziono zlecenia", "ORDER_NOT_FOUND", nil)
	case businessflow.IsInvalidStatus(err):
		return r.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order status", "INVALID_STATUS", err.Error())
	case businessflow.IsStatusTransitionNotAllowed(err):
		return r.ErrorResponse(c, fiber.StatusConflict, "Status transition not allowed", "STATUS_TRANSITION_NOT_ALLOWED", err.Error())
	case businessflow.IsUnknownAddOn(err):
		return r.ErrorResponse(c, fiber.StatusBadRequest, "Unknown add-on service", "UNKNOWN_ADD_ON", err.Error())
	case businessflow.IsAdminNotFound(err):
		return r.ErrorResponse(c, fiber.StatusUnauthorized, "Admin not found", "ADMIN_NOT_FOUND", nil)
	case businessflow.IsIncorrectPassword(err):
		return r.ErrorResponse(c, fiber.StatusUnauthorized, "Incorrect password", "INCORRECT_PASSWORD", nil)
	case businessflow.IsAdminInactive(err):
		return r.ErrorResponse(c, fiber.StatusForbidden, "Admin inactive", "ADMIN_INACTIVE", nil)
	case businessflow.IsInvalidCaptcha(err):
		return r.ErrorResponse(c, fiber.StatusBadRequest, "Invalid captcha", "INVALID_CAPTCHA", nil)
	case businessflow.IsCaptchaNotAvailable(err):
		return r.ErrorResponse(c, fiber.StatusServiceUnavailable, "Captcha not available", "CAPTCHA_NOT_AVAILABLE", nil)
	case businessflow.IsNotifierFailed(err):
		log.Println(fallbackMessage, err)
		return r.ErrorResponse(c, fiber.StatusBadGateway, "Błąd wysyłania wiadomości", "NOTIFIER_FAILED", fiber.Map{"retryable": true})
	}

	log.Println(fallbackMessage, err)
	return r.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

// createRequestContext carries request-scoped values into the flows.
// Callers must defer the returned cancel.
func createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	if adminID, ok := c.Locals("admin_id").(uint); ok {
		ctx = context.WithValue(ctx, utils.AdminIDKey, adminID)
	}
	return ctx, cancel
}

func requestID(c fiber.Ctx) string {
	if id := requestid.FromContext(c); id != "" {
		return id
	}
	return c.Get("X-Request-ID")
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))
	return metadata
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		if err.Kind().String() == "int" {
			return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		}
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		if err.Kind().String() == "int" {
			return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
