package postgres

import (
	"context"

	orguserDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/orguser"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) orgchart.UserRepository {
	return &UserRepository{db: db}
}

// LockTenant takes a transaction-scoped advisory lock keyed by tenant. Other
// dialects rely on their own write serialization.
func (r *UserRepository) LockTenant(ctx context.Context, tenantID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "org:"+tenantID).Error
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]*orguserDatamodel.User, error) {
	var users []*orguserDatamodel.User
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(ctx context.Context, user *orguserDatamodel.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *orguserDatamodel.User) error {
	return r.db.WithContext(ctx).
		Model(&orguserDatamodel.User{}).
		Where("tenant_id = ? AND id = ?", user.TenantID, user.ID).
		Updates(map[string]interface{}{
			"first_name":  user.FirstName,
			"last_name":   user.LastName,
			"email":       user.Email,
			"phone":       user.Phone,
			"permissions": user.Permissions,
			"parent_id":   user.ParentID,
			"updated_at":  user.UpdatedAt,
		}).Error
}

func (r *UserRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&orguserDatamodel.User{}).Error
}

func (r *UserRepository) DeleteAll(ctx context.Context, tenantID string) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&orguserDatamodel.User{}).Error
}
