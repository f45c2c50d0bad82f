package repository

import (
	"context"
	"strings"

	"github.com/amirphl/cleaning-orders/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// OrderRepositoryImpl implements OrderRepository interface
type OrderRepositoryImpl struct {
	*BaseRepository[models.Order, models.OrderFilter]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Order, models.OrderFilter](db),
	}
}

// ByUUID retrieves an order by UUID; malformed ids are a miss
func (r *OrderRepositoryImpl) ByUUID(ctx context.Context, id string) (*models.Order, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	return firstOf(r.ByFilter(ctx, models.OrderFilter{UUID: &parsed}, "", 1, 0))
}

// ByTrackingCode retrieves an order by its public tracking code
func (r *OrderRepositoryImpl) ByTrackingCode(ctx context.Context, code string) (*models.Order, error) {
	return firstOf(r.ByFilter(ctx, models.OrderFilter{TrackingCode: &code}, "", 1, 0))
}

// Update writes the given columns of one order. A missing row yields gorm.ErrRecordNotFound.
func (r *OrderRepositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.updateColumns(ctx, id, fields)
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TrackingCode != nil {
		query = query.Where("tracking_code = ?", *filter.TrackingCode)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CleaningType != nil {
		query = query.Where("cleaning_type = ?", *filter.CleaningType)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.Search != nil {
		if term := models.FoldSearch(*filter.Search); term != "" {
			query = query.Where(`search_text LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(term)+"%")
		}
	}
	return query
}

// ByFilter retrieves orders based on filter criteria
func (r *OrderRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderFilter, orderBy string, limit, offset int) ([]*models.Order, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Order{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = paginate(query.Order(orderBy), limit, offset)

	var orders []*models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *OrderRepositoryImpl) Count(ctx context.Context, filter models.OrderFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Order{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any order matching the filter exists
func (r *OrderRepositoryImpl) Exists(ctx context.Context, filter models.OrderFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
