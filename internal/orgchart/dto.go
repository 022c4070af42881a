package orgchart

import (
	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/core/common/validation"
)

type QuickAddDTO struct {
	Role string `json:"role" validate:"required,oneof=Admin VP Director Manager User IT Marketing"`
}

func (dto QuickAddDTO) Validate() *internal.AppError {
	return validation.Struct(dto)
}

// SaveUserDTO is the edit-form submission. ParentID is honoured only when
// the id is new; reporting lines of existing users change through a move.
type SaveUserDTO struct {
	FirstName   string  `json:"first_name" validate:"max=100"`
	LastName    string  `json:"last_name" validate:"max=100"`
	Email       string  `json:"email" validate:"omitempty,email,max=255"`
	Phone       string  `json:"phone" validate:"max=50"`
	Permissions string  `json:"permissions" validate:"required,oneof=Admin VP Director Manager User IT Marketing"`
	ParentID    *string `json:"parent_id"`
}

func (dto SaveUserDTO) Validate() *internal.AppError {
	return validation.Struct(dto)
}

func (dto SaveUserDTO) ToUser(id string) User {
	return User{
		ID:          id,
		FirstName:   dto.FirstName,
		LastName:    dto.LastName,
		Email:       dto.Email,
		Phone:       dto.Phone,
		Permissions: Role(dto.Permissions),
		ParentID:    dto.ParentID,
	}
}

type MoveDTO struct {
	ParentID *string `json:"parent_id" validate:"omitempty,min=1"`
}

func (dto MoveDTO) Validate() *internal.AppError {
	return validation.Struct(dto)
}

// DropDTO mirrors a drag-and-drop gesture: the drag payload and the id of
// the node it was released on (null for the root zone).
type DropDTO struct {
	DataTransfer map[string]string `json:"data_transfer"`
	TargetID     *string           `json:"target_id"`
}

// QuickAddResponse is a mutation response that also asks the client to
// open the edit form for the new user.
type QuickAddResponse struct {
	MutationResponse
	OpenEditor bool `json:"open_editor"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}

type TreeResponse struct {
	Roots []Node `json:"roots"`
}

type MutationResponse struct {
	User     *User       `json:"user,omitempty"`
	Entry    *AuditEntry `json:"audit_entry,omitempty"`
	Promoted []User      `json:"promoted,omitempty"`
	Ignored  bool        `json:"ignored,omitempty"`
}

type AuditLogsResponse struct {
	AuditLogs []AuditEntry `json:"audit_logs"`
	Limit     int          `json:"limit"`
}

func toMutationResponse(res Result) MutationResponse {
	if res.Ignored {
		return MutationResponse{Ignored: true}
	}
	u := res.User
	return MutationResponse{
		User:     &u,
		Entry:    res.Entry,
		Promoted: res.Promoted,
	}
}
