package dto

import (
	"bytes"
	"encoding/json"

	"github.com/amirphl/cleaning-orders/pricing"
)

// QuoteSelectionRequest is the calculator selection carried into the order form.
// The server recomputes the price from it.
type QuoteSelectionRequest struct {
	ServiceType string            `json:"service_type" example:"residential_weekly"`
	AddOns      []AddOnRequestDTO `json:"add_ons"`
}

// SubmitOrderRequest is the public order form
type SubmitOrderRequest struct {
	FirstName       string                 `json:"first_name" example:"Jan"`
	LastName        string                 `json:"last_name" example:"Kowalski"`
	Email           string                 `json:"email" example:"jan@example.com"`
	Phone           string                 `json:"phone" example:"+48 880 118 995"`
	Street          string                 `json:"street" example:"Kościuszki"`
	HouseNumber     string                 `json:"house_number" example:"12"`
	PostalCode      string                 `json:"postal_code" example:"34-300"`
	City            string                 `json:"city" example:"Żywiec"`
	CleaningType    string                 `json:"cleaning_type" example:"basic"`
	SquareMeters    AreaInput              `json:"square_meters" swaggertype:"integer" example:"45"`
	PreferredDate   string                 `json:"preferred_date" example:"2026-05-04"`
	AdditionalNotes *string                `json:"additional_notes,omitempty" example:"Kot w mieszkaniu"`
	Quote           *QuoteSelectionRequest `json:"quote,omitempty"`
}

// SubmitOrderResponse is returned once an order is stored
type SubmitOrderResponse struct {
	TrackingCode   string        `json:"tracking_code" example:"3F2A9C1B7D4E"`
	TrackingURL    string        `json:"tracking_url" example:"/track/3F2A9C1B7D4E"`
	EstimatedPrice pricing.Price `json:"estimated_price" swaggertype:"string" example:"239"`
	Status         string        `json:"status" example:"received"`
}

// TrackingOrderDTO is the public view of an order. It carries no internal ids
// and no admin notes.
type TrackingOrderDTO struct {
	TrackingCode       string                   `json:"tracking_code" example:"3F2A9C1B7D4E"`
	FirstName          string                   `json:"first_name" example:"Jan"`
	LastName           string                   `json:"last_name" example:"Kowalski"`
	Email              string                   `json:"email" example:"jan@example.com"`
	Phone              string                   `json:"phone" example:"+48 880 118 995"`
	Street             string                   `json:"street" example:"Kościuszki"`
	HouseNumber        string                   `json:"house_number" example:"12"`
	PostalCode         string                   `json:"postal_code" example:"34-300"`
	City               string                   `json:"city" example:"Żywiec"`
	Address            string                   `json:"address" example:"Kościuszki 12, 34-300 Żywiec"`
	CleaningType       string                   `json:"cleaning_type" example:"basic"`
	CleaningTypeLabel  string                   `json:"cleaning_type_label" example:"Sprzątanie podstawowe"`
	SquareMeters       int                      `json:"square_meters" example:"45"`
	PreferredDate      string                   `json:"preferred_date" example:"2026-05-04"`
	AdditionalNotes    *string                  `json:"additional_notes,omitempty"`
	Status             string                   `json:"status" example:"received"`
	StatusLabel        string                   `json:"status_label" example:"Przyjęte"`
	EstimatedPrice     pricing.Price            `json:"estimated_price" swaggertype:"string" example:"239"`
	FinalPrice         *int64                   `json:"final_price,omitempty" example:"250"`
	AdditionalServices []pricing.AddOnSelection `json:"additional_services"`
	ServiceDetails     *QuoteResponse           `json:"service_details,omitempty"`
	QuoteSentAt        *string                  `json:"quote_sent_at,omitempty" example:"2026-05-02T09:00:00Z"`
	CreatedAt          string                   `json:"created_at" example:"2026-05-01T10:30:00Z"`
	UpdatedAt          string                   `json:"updated_at" example:"2026-05-01T10:30:00Z"`
}

// AdminOrderDTO is the full back-office view of an order
type AdminOrderDTO struct {
	ID   uint   `json:"id" example:"1"`
	UUID string `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	TrackingOrderDTO
	AdminNotes *string `json:"admin_notes,omitempty" example:"Klient prosi o telefon"`
}

// AdminListOrdersRequest filters the admin order list
type AdminListOrdersRequest struct {
	Status string `json:"status" example:"all"`
	Search string `json:"search" example:"kowalski"`
	Limit  int    `json:"limit" example:"100"`
	Offset int    `json:"offset" example:"0"`
}

// AdminListOrdersResponse is one page of orders, newest first
type AdminListOrdersResponse struct {
	Orders     []AdminOrderDTO  `json:"orders"`
	Total      int64            `json:"total" example:"42"`
	Pagination OffsetPagination `json:"pagination"`
}

// AdminUpdateStatusRequest moves an order to another status
type AdminUpdateStatusRequest struct {
	Status     string  `json:"status" validate:"required,max=32" example:"in_progress"`
	AdminNotes *string `json:"admin_notes,omitempty" validate:"omitempty,max=5000"`
}

// PriceInput is an admin-entered price as text. A JSON number or string is
// kept verbatim; null, booleans, arrays and objects decode to "".
// Decoding never fails, so a bad price is cleared instead of rejected.
type PriceInput string

func (p *PriceInput) UnmarshalJSON(b []byte) error {
	*p = PriceInput(looseScalar(b))
	return nil
}

// AreaInput is the submitted floor area as text, decoded like PriceInput.
// The order validator turns it into square meters and reports a bad value
// as a square_meters violation.
type AreaInput string

func (a *AreaInput) UnmarshalJSON(b []byte) error {
	*a = AreaInput(looseScalar(b))
	return nil
}

func looseScalar(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	if b[0] == '"' {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return ""
		}
		return s
	}
	var n json.Number
	if json.Unmarshal(b, &n) != nil {
		return ""
	}
	return string(n)
}

// AdminSetFinalPriceRequest overrides the price. Anything that is not a
// non-negative number clears it.
type AdminSetFinalPriceRequest struct {
	FinalPrice PriceInput `json:"final_price" swaggertype:"string" example:"250"`
}

// AdminUpdateOrderRequest patches any combination of status, notes and final price.
// An absent or null final_price leaves the price as it is.
type AdminUpdateOrderRequest struct {
	Status     *string     `json:"status,omitempty" validate:"omitempty,max=32" example:"completed"`
	AdminNotes *string     `json:"admin_notes,omitempty" validate:"omitempty,max=5000"`
	FinalPrice *PriceInput `json:"final_price,omitempty" swaggertype:"string" example:"250"`
}

// AdminSendQuoteResponse reports when the quote left
type AdminSendQuoteResponse struct {
	TrackingCode string `json:"tracking_code" example:"3F2A9C1B7D4E"`
	QuoteSentAt  string `json:"quote_sent_at" example:"2026-05-02T09:00:00Z"`
}

// OrderStatusChangeDTO is one row of an order's status history
type OrderStatusChangeDTO struct {
	ID         uint    `json:"id" example:"1"`
	FromStatus string  `json:"from_status" example:"received"`
	ToStatus   string  `json:"to_status" example:"in_progress"`
	AdminID    *uint   `json:"admin_id,omitempty" example:"1"`
	Notes      *string `json:"notes,omitempty"`
	ChangedAt  string  `json:"changed_at" example:"2026-05-02T09:00:00Z"`
}
