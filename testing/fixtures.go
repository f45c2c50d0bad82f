package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/pricing"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// TestAdminPassword is the plain password of admins created by fixtures
const TestAdminPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAdmin creates an admin with TestAdminPassword
func (tf *TestFixtures) CreateTestAdmin(username string, active bool) (*models.Admin, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hashed),
		IsActive:     utils.ToPtr(active),
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// OrderOption tweaks an order before it is inserted
type OrderOption func(*models.Order)

// WithStatus sets the order status
func WithStatus(s models.OrderStatus) OrderOption {
	return func(o *models.Order) { o.Status = s }
}

// WithCustomer sets the customer contact fields
func WithCustomer(first, last, email, phone string) OrderOption {
	return func(o *models.Order) {
		o.FirstName, o.LastName, o.Email, o.Phone = first, last, email, phone
	}
}

// WithCreatedAt sets both timestamps
func WithCreatedAt(t time.Time) OrderOption {
	return func(o *models.Order) {
		o.CreatedAt = t
		o.UpdatedAt = t
	}
}

// WithQuote attaches a quote snapshot and its total as the estimate
func WithQuote(q *pricing.Quote) OrderOption {
	return func(o *models.Order) {
		o.ServiceDetails = datatypes.NewJSONType(q)
		o.AdditionalServices = q.AddOns
		o.EstimatedPrice = q.Total.Ptr()
	}
}

// CreateTestOrder inserts an order with sensible defaults
func (tf *TestFixtures) CreateTestOrder(opts ...OrderOption) (*models.Order, error) {
	code := fmt.Sprintf("T%011d", rand.Int63n(99999999999))
	price := int64(239)

	order := &models.Order{
		UUID:           uuid.New(),
		TrackingCode:   code,
		FirstName:      "Jan",
		LastName:       "Kowalski",
		Email:          "jan@example.com",
		Phone:          "+48 880 118 995",
		Street:         "Kościuszki",
		HouseNumber:    "12",
		PostalCode:     "34-300",
		City:           "Żywiec",
		CleaningType:   models.CleaningTypeBasic,
		SquareMeters:   45,
		PreferredDate:  utils.UTCNow().AddDate(0, 0, 7).Format(utils.DateLayout),
		EstimatedPrice: &price,
		Status:         models.OrderStatusReceived,
	}
	order.Address = models.ComposeAddress(order.Street, order.HouseNumber, order.PostalCode, order.City)

	for _, opt := range opts {
		opt(order)
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create test order: %w", err)
	}
	return order, nil
}
