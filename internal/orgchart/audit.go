package orgchart

import (
	"fmt"
	"strings"
	"time"

	auditDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/audit"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionMove   Action = "MOVE"
)

// AuditEntry is an immutable record of a hierarchy change. Details is
// rendered at creation time and never refers back to the user by id.
type AuditEntry struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Timestamp string    `json:"timestamp"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"-"`
}

func describeCreate(u *User, parentName string) string {
	return fmt.Sprintf("Created %s (%s) reporting to %s", u.DisplayName(), u.Permissions, parentName)
}

func describeDelete(u *User) string {
	return fmt.Sprintf("Deleted %s (%s)", u.DisplayName(), u.Permissions)
}

func describeMove(u *User, fromName, toName string) string {
	return fmt.Sprintf("Moved %s from reporting to %s to reporting to %s", u.DisplayName(), fromName, toName)
}

// describeUpdate lists changes to first name, last name and role only.
// It returns "" when none of those changed.
func describeUpdate(before, after *User) string {
	var changes []string
	if before.FirstName != after.FirstName {
		changes = append(changes, fmt.Sprintf("first name %q -> %q", before.FirstName, after.FirstName))
	}
	if before.LastName != after.LastName {
		changes = append(changes, fmt.Sprintf("last name %q -> %q", before.LastName, after.LastName))
	}
	if before.Permissions != after.Permissions {
		changes = append(changes, fmt.Sprintf("role %s -> %s", before.Permissions, after.Permissions))
	}
	if len(changes) == 0 {
		return ""
	}
	return fmt.Sprintf("Updated %s: %s", before.DisplayName(), strings.Join(changes, ", "))
}

func AuditToDataModel(e *AuditEntry) *auditDatamodel.Entry {
	return &auditDatamodel.Entry{
		ID:        e.ID,
		TenantID:  e.TenantID,
		Timestamp: e.Timestamp,
		Action:    string(e.Action),
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

func AuditFromDataModel(e *auditDatamodel.Entry) *AuditEntry {
	return &AuditEntry{
		ID:        e.ID,
		TenantID:  e.TenantID,
		Timestamp: e.Timestamp,
		Action:    Action(e.Action),
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

func AuditFromDataModelSlice(entries []*auditDatamodel.Entry) []AuditEntry {
	result := make([]AuditEntry, len(entries))
	for i, e := range entries {
		result[i] = *AuditFromDataModel(e)
	}
	return result
}
