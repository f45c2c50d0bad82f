package dto

import (
	"github.com/amirphl/cleaning-orders/pricing"
)

// AddOnRequestDTO is one add-on picked in the calculator
type AddOnRequestDTO struct {
	ID       string `json:"id" validate:"required,max=64" example:"windows_1"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=100" example:"2"`
}

// QuoteRequest asks the calculator for a price
type QuoteRequest struct {
	ServiceType string            `json:"service_type" validate:"required,max=64" example:"residential_weekly"`
	Area        int               `json:"area" validate:"required,min=1,max=1000" example:"45"`
	AddOns      []AddOnRequestDTO `json:"add_ons" validate:"omitempty,max=50,dive"`
}

// QuoteResponse is a computed price breakdown. Prices are numbers or "individual_quote".
type QuoteResponse struct {
	ServiceType  string                   `json:"service_type" example:"residential_weekly"`
	ServiceName  string                   `json:"service_name" example:"Sprzątanie mieszkań - co tydzień"`
	Area         int                      `json:"area" example:"45"`
	AddOns       []pricing.AddOnSelection `json:"selected_add_ons"`
	BasePrice    pricing.Price            `json:"base_price" swaggertype:"string" example:"239"`
	TotalPrice   pricing.Price            `json:"total_price" swaggertype:"string" example:"317"`
	IsIndividual bool                     `json:"is_individual" example:"false"`
	ComputedAt   string                   `json:"computed_at" example:"2026-05-04T10:30:00Z"`
}

// BracketDTO is one area threshold of a service price list
type BracketDTO struct {
	MaxArea int   `json:"max_area" example:"50"`
	Price   int64 `json:"price" example:"239"`
}

// ServiceDTO is a priced service as shown by the calculator
type ServiceDTO struct {
	Type           string       `json:"type" example:"residential_weekly"`
	Name           string       `json:"name" example:"Sprzątanie mieszkań - co tydzień"`
	Brackets       []BracketDTO `json:"brackets,omitempty"`
	FlatPrice      *int64       `json:"flat_price,omitempty" example:"200"`
	IndividualOnly bool         `json:"individual_only" example:"false"`
}

// AddOnDTO is a catalog add-on
type AddOnDTO struct {
	ID        string `json:"id" example:"windows_1"`
	Name      string `json:"name" example:"Mycie okna jednoskrzydłowego"`
	UnitPrice int64  `json:"unit_price" example:"39"`
	Kind      string `json:"kind" example:"standard"`
	Rate      string `json:"rate,omitempty" example:"0.3"`
}

// CatalogResponse lists every service and add-on the calculator offers
type CatalogResponse struct {
	Services []ServiceDTO `json:"services"`
	AddOns   []AddOnDTO   `json:"add_ons"`
}
