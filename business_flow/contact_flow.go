package businessflow

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/utils"
)

const (
	minContactMessageLen = 10
	maxContactMessageLen = 2000
)

// ContactFlow routes contact form messages to the business inbox
type ContactFlow interface {
	Send(ctx context.Context, req *dto.ContactRequest, metadata *ClientMetadata) error
}

// ContactFlowImpl implements ContactFlow
type ContactFlowImpl struct {
	notifier services.Notifier
}

func NewContactFlow(notifier services.Notifier) ContactFlow {
	return &ContactFlowImpl{notifier: notifier}
}

// validateContact sanitizes req and collects every violation
func validateContact(req *dto.ContactRequest) (services.ContactMessage, error) {
	msg := services.ContactMessage{
		Name:    utils.SanitizeInput(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   utils.SanitizeInput(req.Phone),
		Subject: utils.SanitizeInput(req.Subject),
		Message: utils.SanitizeInput(req.Message),
	}

	ve := &ValidationError{}
	if msg.Name == "" {
		ve.add("name", "required", fieldMessages["required"])
	}
	switch {
	case msg.Email == "":
		ve.add("email", "required", fieldMessages["required"])
	case !IsEmailShape(msg.Email):
		ve.add("email", "email_shape", fieldMessages["email_shape"])
	}
	switch n := utf8.RuneCountInString(msg.Message); {
	case n == 0:
		ve.add("message", "required", fieldMessages["required"])
	case n < minContactMessageLen:
		ve.add("message", "min", "Wiadomość musi mieć co najmniej 10 znaków")
	case n > maxContactMessageLen:
		ve.add("message", "max", "Wiadomość nie może przekraczać 2000 znaków")
	}

	if len(ve.Fields) > 0 {
		return msg, ve
	}
	return msg, nil
}

func (f *ContactFlowImpl) Send(ctx context.Context, req *dto.ContactRequest, metadata *ClientMetadata) error {
	if req == nil {
		req = &dto.ContactRequest{}
	}
	msg, err := validateContact(req)
	if err != nil {
		return err
	}
	if f.notifier == nil {
		return NewBusinessError("NOTIFIER_FAILED", "Notifier not configured", ErrNotifierFailed)
	}

	err = f.notifier.SendContactMessage(ctx, msg)
	notificationsTotal.WithLabelValues("contact", resultLabel(err)).Inc()
	if err != nil {
		fields := metadata.logFields()
		fields["error"] = err.Error()
		utils.LogKV("error", "contact message delivery failed", fields)
		return NewBusinessError("NOTIFIER_FAILED", "Failed to deliver message", errors.Join(ErrNotifierFailed, err))
	}
	return nil
}
