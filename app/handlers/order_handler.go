package handlers

import (
	"github.com/amirphl/cleaning-orders/app/dto"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// OrderHandlerInterface defines the contract for the public order endpoints
type OrderHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Track(c fiber.Ctx) error
	Quote(c fiber.Ctx) error
	Catalog(c fiber.Ctx) error
}

// OrderHandler serves the order form, tracking page and price calculator
type OrderHandler struct {
	responder
	flow      businessflow.OrderFlow
	validator *validator.Validate
}

func NewOrderHandler(flow businessflow.OrderFlow) OrderHandlerInterface {
	return &OrderHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Submit stores a new cleaning order
// @Summary Submit order
// @Description Validate the order form, price it and store it. Returns the tracking code.
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body dto.SubmitOrderRequest true "Order form"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitOrderResponse} "Order received"
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail{details=[]dto.FieldViolation}} "Validation failed"
// @Failure 429 {object} dto.APIResponse "Rate limit exceeded"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/orders [post]
func (h *OrderHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := createRequestContext(c, "/api/v1/orders")
	defer cancel()

	resp, err := h.flow.Submit(ctx, &req, clientMetadata(c))
	if err != nil {
		return h.flowError(c, err, "Order submission failed", "ORDER_SUBMIT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Zlecenie zostało przyjęte", resp)
}

// Track returns the public view of an order
// @Summary Track order
// @Description Look up an order by its 12 character tracking code (case-insensitive)
// @Tags Orders
// @Produce json
// @Param trackingCode path string true "Tracking code"
// @Success 200 {object} dto.APIResponse{data=dto.TrackingOrderDTO} "Order found"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/track/{trackingCode} [get]
func (h *OrderHandler) Track(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/track")
	defer cancel()

	resp, err := h.flow.LookupByTrackingCode(ctx, c.Params("trackingCode"))
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Nie znaleziono zlecenia o podanym numerze śledzenia", "ORDER_NOT_FOUND", nil)
		}
		return h.flowError(c, err, "Order lookup failed", "ORDER_LOOKUP_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Order retrieved successfully", resp)
}

// Quote prices a calculator selection
// @Summary Calculate quote
// @Description Compute the price of a service, area and add-ons. Large areas yield "individual_quote".
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Calculator selection"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteResponse} "Quote computed"
// @Failure 400 {object} dto.APIResponse "Validation failed or unknown add-on"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/quote [post]
func (h *OrderHandler) Quote(c fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/pricing/quote")
	defer cancel()

	resp, err := h.flow.CalculateQuote(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "Quote calculation failed", "QUOTE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Quote computed", resp)
}

// Catalog lists priced services and add-ons
// @Summary Pricing catalog
// @Description List every service with its area brackets and every add-on
// @Tags Pricing
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CatalogResponse} "Catalog"
// @Router /api/v1/pricing/catalog [get]
func (h *OrderHandler) Catalog(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/pricing/catalog")
	defer cancel()

	resp, err := h.flow.Catalog(ctx)
	if err != nil {
		return h.flowError(c, err, "Failed to load catalog", "CATALOG_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Catalog retrieved successfully", resp)
}
