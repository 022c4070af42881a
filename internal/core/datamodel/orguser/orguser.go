package orguser

import "time"

type User struct {
	// Ids are unique per tenant only.
	TenantID    string    `gorm:"column:tenant_id;primaryKey;type:varchar(64);not null;index:idx_org_users_tenant_position,priority:1"`
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	FirstName   string    `gorm:"column:first_name"`
	LastName    string    `gorm:"column:last_name"`
	Email       string    `gorm:"column:email"`
	Phone       string    `gorm:"column:phone"`
	Permissions string    `gorm:"column:permissions;type:varchar(32);not null"`
	ParentID    *string   `gorm:"column:parent_id;type:varchar(64);index"`
	Position    int64     `gorm:"column:position;not null;index:idx_org_users_tenant_position,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "org_users"
}
