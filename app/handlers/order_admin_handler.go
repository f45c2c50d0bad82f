package handlers

import (
	"strconv"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/middleware"
	businessflow "github.com/amirphl/cleaning-orders/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminOrderHandlerInterface defines the contract for the back-office order endpoints
type AdminOrderHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	SetFinalPrice(c fiber.Ctx) error
	SendQuote(c fiber.Ctx) error
	History(c fiber.Ctx) error
	ExportCSV(c fiber.Ctx) error
	ExportExcel(c fiber.Ctx) error
}

type AdminOrderHandler struct {
	responder
	flow      businessflow.AdminOrderFlow
	validator *validator.Validate
}

func NewAdminOrderHandler(flow businessflow.AdminOrderFlow) AdminOrderHandlerInterface {
	return &AdminOrderHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func listRequestFromQuery(c fiber.Ctx) *dto.AdminListOrdersRequest {
	req := &dto.AdminListOrdersRequest{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		req.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		req.Offset = v
	}
	return req
}

func adminID(c fiber.Ctx) uint {
	id, _ := middleware.GetAdminIDFromContext(c)
	return id
}

// List returns one page of orders, newest first
// @Summary List orders
// @Description Filter by status ("all" for any) and a case-insensitive search over name, email, phone and address
// @Tags Admin Orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Order status or all"
// @Param search query string false "Search term"
// @Param limit query int false "Page size (default 100, max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListOrdersResponse} "Orders"
// @Failure 400 {object} dto.APIResponse "Unknown status"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/admin/orders [get]
func (h *AdminOrderHandler) List(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders")
	defer cancel()

	resp, err := h.flow.ListOrders(ctx, listRequestFromQuery(c))
	if err != nil {
		return h.flowError(c, err, "Failed to list orders", "ORDER_LIST_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Orders retrieved successfully", resp)
}

// Get returns one order with admin notes
// @Summary Get order
// @Tags Admin Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminOrderDTO} "Order"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Router /api/v1/admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id")
	defer cancel()

	resp, err := h.flow.GetOrder(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to get order", "ORDER_LOOKUP_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order retrieved successfully", resp)
}

// Update patches status, notes and final price in one call
// @Summary Update order
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Param request body dto.AdminUpdateOrderRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AdminOrderDTO} "Order updated"
// @Failure 400 {object} dto.APIResponse "Invalid status"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 409 {object} dto.APIResponse "Status transition not allowed"
// @Router /api/v1/admin/orders/{id} [patch]
func (h *AdminOrderHandler) Update(c fiber.Ctx) error {
	var req dto.AdminUpdateOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id")
	defer cancel()

	resp, err := h.flow.UpdateOrder(ctx, c.Params("id"), &req, adminID(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update order", "ORDER_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order updated successfully", resp)
}

// UpdateStatus moves an order to another status
// @Summary Update order status
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Param request body dto.AdminUpdateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.AdminOrderDTO} "Status updated"
// @Failure 400 {object} dto.APIResponse "Invalid status"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 409 {object} dto.APIResponse "Status transition not allowed"
// @Router /api/v1/admin/orders/{id}/status [put]
func (h *AdminOrderHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.AdminUpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.validationFailed(c, err)
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id/status")
	defer cancel()

	resp, err := h.flow.UpdateStatus(ctx, c.Params("id"), req.Status, req.AdminNotes, adminID(c))
	if err != nil {
		return h.flowError(c, err, "Failed to update order status", "ORDER_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Status updated successfully", resp)
}

// SetFinalPrice overrides the price of an order
// @Summary Set final price
// @Description Decimal commas are accepted and the value is rounded to whole units. Invalid or negative input clears the price.
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Param request body dto.AdminSetFinalPriceRequest true "Final price"
// @Success 200 {object} dto.APIResponse{data=dto.AdminOrderDTO} "Price updated"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Router /api/v1/admin/orders/{id}/final-price [put]
func (h *AdminOrderHandler) SetFinalPrice(c fiber.Ctx) error {
	var req dto.AdminSetFinalPriceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id/final-price")
	defer cancel()

	resp, err := h.flow.SetFinalPrice(ctx, c.Params("id"), string(req.FinalPrice))
	if err != nil {
		return h.flowError(c, err, "Failed to set final price", "ORDER_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Final price updated successfully", resp)
}

// SendQuote emails the price offer to the customer
// @Summary Send quote
// @Description Render the quote document and email it. quote_sent_at is stamped only after delivery.
// @Tags Admin Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminSendQuoteResponse} "Quote sent"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 502 {object} dto.APIResponse "Delivery failed, retryable"
// @Router /api/v1/admin/orders/{id}/send-quote [post]
func (h *AdminOrderHandler) SendQuote(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id/send-quote")
	defer cancel()

	resp, err := h.flow.SendQuote(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to send quote", "QUOTE_SEND_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Wiadomość została wysłana pomyślnie", resp)
}

// History lists the status changes of an order, oldest first
// @Summary Order status history
// @Tags Admin Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order UUID"
// @Success 200 {object} dto.APIResponse{data=[]dto.OrderStatusChangeDTO} "History"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Router /api/v1/admin/orders/{id}/history [get]
func (h *AdminOrderHandler) History(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/:id/history")
	defer cancel()

	resp, err := h.flow.StatusHistory(ctx, c.Params("id"))
	if err != nil {
		return h.flowError(c, err, "Failed to load status history", "STATUS_HISTORY_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Status history retrieved successfully", resp)
}

// ExportCSV downloads the filtered orders as CSV
// @Summary Export orders (CSV)
// @Tags Admin Orders
// @Produce text/csv
// @Security BearerAuth
// @Param status query string false "Order status or all"
// @Param search query string false "Search term"
// @Success 200 {file} file "CSV file"
// @Router /api/v1/admin/orders/export.csv [get]
func (h *AdminOrderHandler) ExportCSV(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/export.csv")
	defer cancel()

	name, data, err := h.flow.ExportCSV(ctx, listRequestFromQuery(c))
	if err != nil {
		return h.flowError(c, err, "Failed to export orders", "ORDER_EXPORT_FAILED")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", "attachment; filename="+name)
	return c.Send(data)
}

// ExportExcel downloads the filtered orders as an xlsx workbook
// @Summary Export orders (Excel)
// @Tags Admin Orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Order status or all"
// @Param search query string false "Search term"
// @Success 200 {file} file "Excel file"
// @Router /api/v1/admin/orders/export.xlsx [get]
func (h *AdminOrderHandler) ExportExcel(c fiber.Ctx) error {
	ctx, cancel := createRequestContext(c, "/api/v1/admin/orders/export.xlsx")
	defer cancel()

	name, data, err := h.flow.ExportExcel(ctx, listRequestFromQuery(c))
	if err != nil {
		return h.flowError(c, err, "Failed to export orders", "ORDER_EXPORT_FAILED")
	}

	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", "attachment; filename="+name)
	return c.Send(data)
}
