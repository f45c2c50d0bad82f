// Package models contains domain entities for the cleaning orders service
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CleaningType is the stored service variant
type CleaningType string

const (
	CleaningTypeBasic          CleaningType = "basic"
	CleaningTypeDeep           CleaningType = "deep"
	CleaningTypeOffice         CleaningType = "office"
	CleaningTypePostRenovation CleaningType = "post_renovation"
)

var cleaningTypeAliases = map[string]CleaningType{
	"basic":           CleaningTypeBasic,
	"podstawowe":      CleaningTypeBasic,
	"deep":            CleaningTypeDeep,
	"głębokie":        CleaningTypeDeep,
	"office":          CleaningTypeOffice,
	"biurowe":         CleaningTypeOffice,
	"post_renovation": CleaningTypePostRenovation,
	"po_remoncie":     CleaningTypePostRenovation,
}

var serviceToCleaningType = map[pricing.ServiceType]CleaningType{
	pricing.ServiceResidentialWeekly:   CleaningTypeBasic,
	pricing.ServiceResidentialBiweekly: CleaningTypeBasic,
	pricing.ServiceResidentialOnetime:  CleaningTypeBasic,
	pricing.ServiceOffice:              CleaningTypeOffice,
	pricing.ServicePostRenovation:      CleaningTypePostRenovation,
	pricing.ServiceUpholstery:          CleaningTypeDeep,
}

var cleaningTypeToService = map[CleaningType]pricing.ServiceType{
	CleaningTypeBasic:          pricing.ServiceResidentialOnetime,
	CleaningTypeDeep:           pricing.ServiceResidentialOnetime,
	CleaningTypeOffice:         pricing.ServiceOffice,
	CleaningTypePostRenovation: pricing.ServicePostRenovation,
}

// ParseCleaningType accepts stored values and their Polish aliases
func ParseCleaningType(s string) (CleaningType, bool) {
	ct, ok := cleaningTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return ct, ok
}

// CleaningTypeForService maps a calculator service onto the stored variant
func CleaningTypeForService(st pricing.ServiceType) (CleaningType, bool) {
	ct, ok := serviceToCleaningType[st]
	return ct, ok
}

// PricingService is the calculator service used when an order carries no quote
func (c CleaningType) PricingService() pricing.ServiceType {
	if st, ok := cleaningTypeToService[c]; ok {
		return st
	}
	return pricing.ServiceResidentialOnetime
}

// Label is the customer-facing name
func (c CleaningType) Label() string {
	switch c {
	case CleaningTypeBasic:
		return "Sprzątanie podstawowe"
	case CleaningTypeDeep:
		return "Sprzątanie gruntowne"
	case CleaningTypeOffice:
		return "Sprzątanie biur"
	case CleaningTypePostRenovation:
		return "Sprzątanie po remoncie"
	default:
		return string(c)
	}
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusReceived:   0,
	OrderStatusInProgress: 1,
	OrderStatusCompleted:  2,
}

var orderStatusAliases = map[string]OrderStatus{
	"received":    OrderStatusReceived,
	"przyjęte":    OrderStatusReceived,
	"in_progress": OrderStatusInProgress,
	"w_trakcie":   OrderStatusInProgress,
	"completed":   OrderStatusCompleted,
	"zakończone":  OrderStatusCompleted,
}

// AllOrderStatuses lists statuses in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusReceived, OrderStatusInProgress, OrderStatusCompleted}
}

// ParseOrderStatus accepts stored values and their Polish aliases
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st, ok := orderStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// IsValid reports whether s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// Label is the customer-facing name
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusReceived:
		return "Przyjęte"
	case OrderStatusInProgress:
		return "W trakcie"
	case OrderStatusCompleted:
		return "Zakończone"
	default:
		return string(s)
	}
}

var (
	ErrUnknownOrderStatus         = errors.New("unknown order status")
	ErrStatusTransitionNotAllowed = errors.New("status transition not allowed")
)

// ValidateStatusTransition checks a status write. Without strict mode any
// known status may follow any other; strict mode only allows moving forward
// or rewriting the current status.
func ValidateStatusTransition(from, to OrderStatus, strict bool) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownOrderStatus, to)
	}
	if !strict {
		return nil
	}
	fromRank, ok := orderStatusRank[from]
	if !ok {
		return nil
	}
	if orderStatusRank[to] < fromRank {
		return fmt.Errorf("%w: %s -> %s", ErrStatusTransitionNotAllowed, from, to)
	}
	return nil
}

// Order is a customer cleaning order
type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_orders_uuid" json:"uuid"`
	TrackingCode string    `gorm:"size:12;not null;uniqueIndex:uk_orders_tracking_code" json:"tracking_code"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:255;not null;index:idx_orders_email" json:"email"`
	Phone     string `gorm:"size:32;not null" json:"phone"`

	Street      string `gorm:"size:255;not null" json:"street"`
	HouseNumber string `gorm:"size:32;not null" json:"house_number"`
	PostalCode  string `gorm:"size:16;not null" json:"postal_code"`
	City        string `gorm:"size:100;not null" json:"city"`
	Address     string `gorm:"size:512;not null" json:"address"`

	CleaningType    CleaningType `gorm:"size:32;not null;index:idx_orders_cleaning_type" json:"cleaning_type"`
	SquareMeters    int          `gorm:"not null" json:"square_meters"`
	PreferredDate   string       `gorm:"size:10;not null" json:"preferred_date"`
	AdditionalNotes *string      `gorm:"type:text" json:"additional_notes,omitempty"`

	EstimatedPrice     *int64                                      `json:"estimated_price"`
	AdditionalServices datatypes.JSONSlice[pricing.AddOnSelection] `json:"additional_services"`
	ServiceDetails     datatypes.JSONType[*pricing.Quote]          `json:"service_details"`

	Status      OrderStatus `gorm:"size:32;not null;index:idx_orders_status" json:"status"`
	AdminNotes  *string     `gorm:"type:text" json:"admin_notes,omitempty"`
	FinalPrice  *int64      `json:"final_price,omitempty"`
	QuoteSentAt *time.Time  `json:"quote_sent_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:idx_orders_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// SearchText is the customer and address fields folded by FoldSearch.
	// Database LOWER() only folds ASCII on sqlite, so the folding happens here.
	// It is written on create; the fields it covers are never updated.
	SearchText string `gorm:"type:text;not null;default:''" json:"-"`
}

// FoldSearch lower-cases s with full Unicode case folding for admin search
func FoldSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (o *Order) searchText() string {
	parts := []string{o.FirstName, o.LastName, o.Email, o.Phone, o.Address, o.Street, o.City, o.PostalCode}
	for i, p := range parts {
		parts[i] = FoldSearch(p)
	}
	return strings.Join(parts, "\n")
}

func (Order) TableName() string {
	return "orders"
}

// BeforeCreate ensures UUID and timestamps are set
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	if o.Status == "" {
		o.Status = OrderStatusReceived
	}
	o.SearchText = o.searchText()
	return nil
}

// Quote returns the stored quote snapshot, nil when none was attached
func (o *Order) Quote() *pricing.Quote {
	return o.ServiceDetails.Data()
}

// EstimatedPriceValue is the estimate as a pricing.Price
func (o *Order) EstimatedPriceValue() pricing.Price {
	return pricing.FromPtr(o.EstimatedPrice)
}

// FullName joins first and last name
func (o *Order) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// ComposeAddress builds the legacy single-line address
func ComposeAddress(street, houseNumber, postalCode, city string) string {
	line := strings.TrimSpace(street + " " + houseNumber)
	tail := strings.TrimSpace(postalCode + " " + city)
	switch {
	case line == "":
		return tail
	case tail == "":
		return line
	default:
		return line + ", " + tail
	}
}

// OrderFilter represents filter criteria for order queries
type OrderFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	TrackingCode  *string
	Email         *string
	Status        *OrderStatus
	CleaningType  *CleaningType
	Search        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
