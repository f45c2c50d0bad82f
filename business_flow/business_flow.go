// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/utils"
)

// ClientMetadata holds client information used in logs and audit rows
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func (cm *ClientMetadata) logFields() map[string]any {
	if cm == nil {
		return map[string]any{}
	}
	return map[string]any{
		"ip":         cm.IPAddress,
		"user_agent": cm.UserAgent,
		"request_id": cm.RequestID,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToQuoteResponse converts a computed quote into its response shape
func ToQuoteResponse(q *pricing.Quote) *dto.QuoteResponse {
	if q == nil {
		return nil
	}
	addOns := q.AddOns
	if addOns == nil {
		addOns = []pricing.AddOnSelection{}
	}
	return &dto.QuoteResponse{
		ServiceType:  string(q.ServiceType),
		ServiceName:  q.ServiceName,
		Area:         q.Area,
		AddOns:       addOns,
		BasePrice:    q.BasePrice,
		TotalPrice:   q.Total,
		IsIndividual: q.Total.IsIndividual(),
		ComputedAt:   formatTime(q.ComputedAt),
	}
}

// ToTrackingOrderDTO is the public projection used by the tracking page
func ToTrackingOrderDTO(order models.Order) dto.TrackingOrderDTO {
	addOns := []pricing.AddOnSelection(order.AdditionalServices)
	if addOns == nil {
		addOns = []pricing.AddOnSelection{}
	}
	return dto.TrackingOrderDTO{
		TrackingCode:       order.TrackingCode,
		FirstName:          order.FirstName,
		LastName:           order.LastName,
		Email:              order.Email,
		Phone:              order.Phone,
		Street:             order.Street,
		HouseNumber:        order.HouseNumber,
		PostalCode:         order.PostalCode,
		City:               order.City,
		Address:            order.Address,
		CleaningType:       string(order.CleaningType),
		CleaningTypeLabel:  order.CleaningType.Label(),
		SquareMeters:       order.SquareMeters,
		PreferredDate:      order.PreferredDate,
		AdditionalNotes:    order.AdditionalNotes,
		Status:             string(order.Status),
		StatusLabel:        order.Status.Label(),
		EstimatedPrice:     order.EstimatedPriceValue(),
		FinalPrice:         order.FinalPrice,
		AdditionalServices: addOns,
		ServiceDetails:     ToQuoteResponse(order.Quote()),
		QuoteSentAt:        formatTimePtr(order.QuoteSentAt),
		CreatedAt:          formatTime(order.CreatedAt),
		UpdatedAt:          formatTime(order.UpdatedAt),
	}
}

// ToAdminOrderDTO is the back-office projection
func ToAdminOrderDTO(order models.Order) dto.AdminOrderDTO {
	return dto.AdminOrderDTO{
		ID:               order.ID,
		UUID:             order.UUID.String(),
		TrackingOrderDTO: ToTrackingOrderDTO(order),
		AdminNotes:       order.AdminNotes,
	}
}

func ToOrderStatusChangeDTO(change models.OrderStatusChange) dto.OrderStatusChangeDTO {
	return dto.OrderStatusChangeDTO{
		ID:         change.ID,
		FromStatus: string(change.FromStatus),
		ToStatus:   string(change.ToStatus),
		AdminID:    change.AdminID,
		Notes:      change.Notes,
		ChangedAt:  formatTime(change.ChangedAt),
	}
}

func ToAdminDTOModel(admin models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		ID:          admin.ID,
		UUID:        admin.UUID.String(),
		Username:    admin.Username,
		IsActive:    admin.IsActive,
		LastLoginAt: formatTimePtr(admin.LastLoginAt),
		CreatedAt:   formatTime(admin.CreatedAt),
	}
}

func ToAdminSessionDTO(accessToken, refreshToken string, ttl time.Duration) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(ttl.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    formatTime(utils.UTCNow()),
	}
}

// ToCatalogResponse lists a pricing table for the calculator
func ToCatalogResponse(table *pricing.Table) dto.CatalogResponse {
	resp := dto.CatalogResponse{
		Services: make([]dto.ServiceDTO, 0, len(table.Services())),
		AddOns:   make([]dto.AddOnDTO, 0, len(table.AddOns())),
	}
	for _, s := range table.Services() {
		brackets := make([]dto.BracketDTO, 0, len(s.Brackets))
		for _, b := range s.Brackets {
			brackets = append(brackets, dto.BracketDTO{MaxArea: b.MaxArea, Price: b.Price})
		}
		resp.Services = append(resp.Services, dto.ServiceDTO{
			Type:           string(s.Type),
			Name:           s.Name,
			Brackets:       brackets,
			FlatPrice:      s.FlatPrice,
			IndividualOnly: s.IndividualOnly,
		})
	}
	for _, a := range table.AddOns() {
		item := dto.AddOnDTO{
			ID:        a.ID,
			Name:      a.Name,
			UnitPrice: a.UnitPrice,
			Kind:      string(a.Kind),
		}
		if a.Kind == pricing.AddOnSurcharge {
			item.Rate = a.Rate.String()
		}
		resp.AddOns = append(resp.AddOns, item)
	}
	return resp
}
