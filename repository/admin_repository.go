package repository

import (
	"context"

	"github.com/amirphl/cleaning-orders/models"
	"gorm.io/gorm"
)

// AdminRepositoryImpl stores back-office accounts
type AdminRepositoryImpl struct {
	*BaseRepository[models.Admin, models.AdminFilter]
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &AdminRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Admin, models.AdminFilter](db),
	}
}

// ByUsername returns nil, nil when no account has that login
func (r *AdminRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return firstOf(r.ByFilter(ctx, models.AdminFilter{Username: &username}, "", 1, 0))
}

// Update is used for login stamps and password rotation
func (r *AdminRepositoryImpl) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.updateColumns(ctx, id, fields)
}

func (r *AdminRepositoryImpl) scoped(ctx context.Context, filter models.AdminFilter) *gorm.DB {
	query := r.getDB(ctx).Model(&models.Admin{})
	if filter.Username != nil {
		query = query.Where("username = ?", *filter.Username)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

func (r *AdminRepositoryImpl) ByFilter(ctx context.Context, filter models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	if orderBy == "" {
		orderBy = "username ASC"
	}
	var admins []*models.Admin
	err := paginate(r.scoped(ctx, filter).Order(orderBy), limit, offset).Find(&admins).Error
	return admins, err
}

func (r *AdminRepositoryImpl) Count(ctx context.Context, filter models.AdminFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, filter).Count(&n).Error
	return n, err
}

func (r *AdminRepositoryImpl) Exists(ctx context.Context, filter models.AdminFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}
