package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrgUserCreated = "org.user.created"
	EventTypeOrgUserUpdated = "org.user.updated"
	EventTypeOrgUserDeleted = "org.user.deleted"
	EventTypeOrgUserMoved   = "org.user.moved"
	EventTypeOrgMoveBlocked = "org.move.rejected"
)

// OrgEventTypes lists every hierarchy event the service publishes.
var OrgEventTypes = []string{
	EventTypeOrgUserCreated,
	EventTypeOrgUserUpdated,
	EventTypeOrgUserDeleted,
	EventTypeOrgUserMoved,
	EventTypeOrgMoveBlocked,
}

type OrgUserEvent struct {
	BaseEvent
	TenantID    string  `json:"tenant_id"`
	UserID      string  `json:"user_id"`
	Role        string  `json:"role"`
	ParentID    *string `json:"parent_id,omitempty"`
	AuditAction string  `json:"audit_action,omitempty"`
}

func NewOrgUserEvent(eventType, tenantID, userID, role string, parentID *string, auditAction string) *OrgUserEvent {
	data := map[string]interface{}{
		"tenant_id": tenantID,
		"user_id":   userID,
		"role":      role,
	}
	if parentID != nil {
		data["parent_id"] = *parentID
	}
	if auditAction != "" {
		data["audit_action"] = auditAction
	}

	return &OrgUserEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      data,
		},
		TenantID:    tenantID,
		UserID:      userID,
		Role:        role,
		ParentID:    parentID,
		AuditAction: auditAction,
	}
}
