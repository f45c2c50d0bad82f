package handlers

import (
	"github.com/amirphl/cleaning-orders/app/dto"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/gofiber/fiber/v3"
)

type ContactHandlerInterface interface {
	Send(c fiber.Ctx) error
}

type ContactHandler struct {
	responder
	flow businessflow.ContactFlow
}

func NewContactHandler(flow businessflow.ContactFlow) ContactHandlerInterface {
	return &ContactHandler{flow: flow}
}

// Send forwards a contact form message to the business inbox
// @Summary Contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body dto.ContactRequest true "Message"
// @Success 200 {object} dto.APIResponse "Message sent"
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail{details=[]dto.FieldViolation}} "Validation failed"
// @Failure 502 {object} dto.APIResponse "Delivery failed, retryable"
// @Router /api/v1/contact [post]
func (h *ContactHandler) Send(c fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := createRequestContext(c, "/api/v1/contact")
	defer cancel()

	if err := h.flow.Send(ctx, &req, clientMetadata(c)); err != nil {
		return h.flowError(c, err, "Contact message failed", "CONTACT_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Wiadomość została wysłana pomyślnie", nil)
}
