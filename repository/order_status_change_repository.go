package repository

import (
	"context"

	"github.com/amirphl/cleaning-orders/models"
	"gorm.io/gorm"
)

// OrderStatusChangeRepositoryImpl implements OrderStatusChangeRepository interface
type OrderStatusChangeRepositoryImpl struct {
	*BaseRepository[models.OrderStatusChange, models.OrderStatusChangeFilter]
}

// NewOrderStatusChangeRepository creates a new status history repository
func NewOrderStatusChangeRepository(db *gorm.DB) OrderStatusChangeRepository {
	return &OrderStatusChangeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OrderStatusChange, models.OrderStatusChangeFilter](db),
	}
}

// ByOrderID lists the history of one order, oldest first
func (r *OrderStatusChangeRepositoryImpl) ByOrderID(ctx context.Context, orderID uint) ([]*models.OrderStatusChange, error) {
	return r.ByFilter(ctx, models.OrderStatusChangeFilter{OrderID: &orderID}, "changed_at ASC, id ASC", 0, 0)
}

func (r *OrderStatusChangeRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderStatusChangeFilter) *gorm.DB {
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.ToStatus != nil {
		query = query.Where("to_status = ?", *filter.ToStatus)
	}
	if filter.ChangedAfter != nil {
		query = query.Where("changed_at > ?", *filter.ChangedAfter)
	}
	return query
}

// ByFilter retrieves status changes based on filter criteria
func (r *OrderStatusChangeRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderStatusChangeFilter, orderBy string, limit, offset int) ([]*models.OrderStatusChange, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.OrderStatusChange{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = paginate(query.Order(orderBy), limit, offset)

	var changes []*models.OrderStatusChange
	if err := query.Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}

// Count returns the number of status changes matching the filter
func (r *OrderStatusChangeRepositoryImpl) Count(ctx context.Context, filter models.OrderStatusChangeFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.OrderStatusChange{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any status change matching the filter exists
func (r *OrderStatusChangeRepositoryImpl) Exists(ctx context.Context, filter models.OrderStatusChangeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
