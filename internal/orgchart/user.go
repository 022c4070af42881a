package orgchart

import (
	"strings"
	"time"

	orguserDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/orguser"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleVP        Role = "VP"
	RoleDirector  Role = "Director"
	RoleManager   Role = "Manager"
	RoleUser      Role = "User"
	RoleIT        Role = "IT"
	RoleMarketing Role = "Marketing"
)

// Roles lists every assignable role in display order.
var Roles = []Role{RoleAdmin, RoleVP, RoleDirector, RoleManager, RoleUser, RoleIT, RoleMarketing}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// SystemRoot names the virtual parent of every root user in audit text.
const SystemRoot = "System Root"

const unnamedUser = "Unnamed User"

// User is a person-node in the reporting hierarchy. ParentID nil means root.
type User struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Permissions Role      `json:"permissions"`
	ParentID    *string   `json:"parent_id"`
	Position    int64     `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) IsRoot() bool {
	return u.ParentID == nil
}

func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return unnamedUser
	}
	return name
}

func (u User) clone() User {
	if u.ParentID != nil {
		parent := *u.ParentID
		u.ParentID = &parent
	}
	return u
}

func ToDataModel(u *User) *orguserDatamodel.User {
	return &orguserDatamodel.User{
		ID:          u.ID,
		TenantID:    u.TenantID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Permissions: string(u.Permissions),
		ParentID:    u.ParentID,
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromDataModel(u *orguserDatamodel.User) *User {
	return &User{
		ID:          u.ID,
		TenantID:    u.TenantID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Permissions: Role(u.Permissions),
		ParentID:    u.ParentID,
		Position:    u.Position,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*orguserDatamodel.User) []User {
	result := make([]User, len(users))
	for i, u := range users {
		result[i] = *FromDataModel(u)
	}
	return result
}
