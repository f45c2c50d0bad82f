package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/config"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/repository"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const maxTrackingCodeAttempts = 5

// OrderFlow is the public side of the order lifecycle
type OrderFlow interface {
	Submit(ctx context.Context, req *dto.SubmitOrderRequest, metadata *ClientMetadata) (*dto.SubmitOrderResponse, error)
	LookupByTrackingCode(ctx context.Context, code string) (*dto.TrackingOrderDTO, error)
	CalculateQuote(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error)
	Catalog(ctx context.Context) (*dto.CatalogResponse, error)
}

// OrderFlowImpl implements OrderFlow
type OrderFlowImpl struct {
	orderRepo       repository.OrderRepository
	calculator      *pricing.Calculator
	validator       *OrderValidator
	notifier        services.Notifier
	cfg             config.OrdersConfig
	newTrackingCode func() string
}

func NewOrderFlow(
	orderRepo repository.OrderRepository,
	calculator *pricing.Calculator,
	validator *OrderValidator,
	notifier services.Notifier,
	cfg config.OrdersConfig,
) OrderFlow {
	return &OrderFlowImpl{
		orderRepo:       orderRepo,
		calculator:      calculator,
		validator:       validator,
		notifier:        notifier,
		cfg:             cfg,
		newTrackingCode: GenerateTrackingCode,
	}
}

// GenerateTrackingCode takes the first 12 hex digits of a random UUID, upper-cased
func GenerateTrackingCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:utils.TrackingCodeLength])
}

// IsTrackingCodeShape reports whether code could have been issued by GenerateTrackingCode
func IsTrackingCodeShape(code string) bool {
	if len(code) != utils.TrackingCodeLength {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// TrackingPath is the public tracking page for code
func TrackingPath(code string) string {
	return "/track/" + code
}

// Submit validates, prices and stores a new order
func (f *OrderFlowImpl) Submit(ctx context.Context, req *dto.SubmitOrderRequest, metadata *ClientMetadata) (*dto.SubmitOrderResponse, error) {
	valid, err := f.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	quote, err := f.calculator.Quote(valid.ServiceType, valid.SquareMeters, valid.AddOns)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownAddOn) {
			return nil, NewBusinessError("UNKNOWN_ADD_ON", "Unknown add-on service", errors.Join(ErrUnknownAddOn, err))
		}
		return nil, NewBusinessError("QUOTE_FAILED", "Failed to compute quote", err)
	}

	code, err := f.allocateTrackingCode(ctx)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	order := &models.Order{
		UUID:               uuid.New(),
		TrackingCode:       code,
		FirstName:          valid.FirstName,
		LastName:           valid.LastName,
		Email:              valid.Email,
		Phone:              valid.Phone,
		Street:             valid.Street,
		HouseNumber:        valid.HouseNumber,
		PostalCode:         valid.PostalCode,
		City:               valid.City,
		Address:            valid.Address,
		CleaningType:       valid.CleaningType,
		SquareMeters:       valid.SquareMeters,
		PreferredDate:      valid.PreferredDate,
		AdditionalNotes:    valid.AdditionalNotes,
		EstimatedPrice:     quote.Total.Ptr(),
		AdditionalServices: quote.AddOns,
		Status:             models.OrderStatusReceived,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if valid.FromCalculator {
		order.ServiceDetails = datatypes.NewJSONType(quote)
	}

	if err := f.orderRepo.Save(ctx, order); err != nil {
		return nil, NewBusinessError("ORDER_CREATE_FAILED", "Failed to store order", err)
	}

	source := "form"
	if valid.FromCalculator {
		source = "calculator"
	}
	ordersSubmittedTotal.WithLabelValues(string(order.CleaningType), source).Inc()

	fields := metadata.logFields()
	fields["tracking_code"] = order.TrackingCode
	fields["cleaning_type"] = order.CleaningType
	fields["estimated_price"] = quote.Total.String()
	utils.LogKV("info", "order submitted", fields)

	f.notifyReceived(ctx, order)

	return &dto.SubmitOrderResponse{
		TrackingCode:   order.TrackingCode,
		TrackingURL:    TrackingPath(order.TrackingCode),
		EstimatedPrice: quote.Total,
		Status:         string(order.Status),
	}, nil
}

// notifyReceived runs only when the confirmation email is switched on.
// A delivery failure never fails the submission.
func (f *OrderFlowImpl) notifyReceived(ctx context.Context, order *models.Order) {
	if !f.cfg.NotifyOnReceived || f.notifier == nil {
		return
	}
	err := f.notifier.SendOrderReceived(ctx, order)
	notificationsTotal.WithLabelValues("order_received", resultLabel(err)).Inc()
	if err != nil {
		utils.LogKV("error", "order confirmation email failed", map[string]any{
			"tracking_code": order.TrackingCode,
			"error":         err.Error(),
		})
	}
}

func (f *OrderFlowImpl) allocateTrackingCode(ctx context.Context) (string, error) {
	for range maxTrackingCodeAttempts {
		code := f.newTrackingCode()
		taken, err := f.orderRepo.Exists(ctx, models.OrderFilter{TrackingCode: &code})
		if err != nil {
			return "", NewBusinessError("TRACKING_CODE_LOOKUP_FAILED", "Failed to check tracking code", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", NewBusinessError("TRACKING_CODE_EXHAUSTED", "Failed to allocate tracking code", ErrTrackingCodeExhausted)
}

// LookupByTrackingCode is the read-only public view of an order
func (f *OrderFlowImpl) LookupByTrackingCode(ctx context.Context, code string) (*dto.TrackingOrderDTO, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !IsTrackingCodeShape(code) {
		trackingLookupsTotal.WithLabelValues("malformed").Inc()
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}

	order, err := f.orderRepo.ByTrackingCode(ctx, code)
	if err != nil {
		trackingLookupsTotal.WithLabelValues("error").Inc()
		return nil, NewBusinessError("ORDER_LOOKUP_FAILED", "Failed to look up order", err)
	}
	if order == nil {
		trackingLookupsTotal.WithLabelValues("not_found").Inc()
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}

	trackingLookupsTotal.WithLabelValues("found").Inc()
	view := ToTrackingOrderDTO(*order)
	return &view, nil
}

// CalculateQuote prices a calculator selection. Unknown service types are
// priced with the fallback table.
func (f *OrderFlowImpl) CalculateQuote(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	requests := make([]pricing.AddOnRequest, 0, len(req.AddOns))
	for _, a := range req.AddOns {
		requests = append(requests, pricing.AddOnRequest{ID: strings.TrimSpace(a.ID), Quantity: a.Quantity})
	}

	quote, err := f.calculator.Quote(pricing.ServiceType(strings.TrimSpace(req.ServiceType)), req.Area, requests)
	if err != nil {
		if errors.Is(err, pricing.ErrUnknownAddOn) {
			return nil, NewBusinessError("UNKNOWN_ADD_ON", "Unknown add-on service", errors.Join(ErrUnknownAddOn, err))
		}
		return nil, NewBusinessError("QUOTE_FAILED", "Failed to compute quote", err)
	}
	return ToQuoteResponse(quote), nil
}

// Catalog lists the services and add-ons of the injected price table
func (f *OrderFlowImpl) Catalog(ctx context.Context) (*dto.CatalogResponse, error) {
	resp := ToCatalogResponse(f.calculator.Table())
	return &resp, nil
}
