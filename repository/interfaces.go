package repository

import (
	"context"

	"github.com/amirphl/cleaning-orders/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// OrderRepository is the order store
type OrderRepository interface {
	Repository[models.Order, models.OrderFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Order, error)
	ByTrackingCode(ctx context.Context, code string) (*models.Order, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
}

// OrderStatusChangeRepository stores the status history of orders
type OrderStatusChangeRepository interface {
	Repository[models.OrderStatusChange, models.OrderStatusChangeFilter]
	ByOrderID(ctx context.Context, orderID uint) ([]*models.OrderStatusChange, error)
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
}
