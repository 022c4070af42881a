package orgchart

import (
	"sync"
	"time"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/google/uuid"
)

// DragDataKey is the drag-data-transfer key that carries the dragged user id.
const DragDataKey = "userId"

// EditorOptions configures an Editor. Zero values fall back to wall-clock
// time, random UUIDs and the default audit time format.
type EditorOptions struct {
	Now        func() time.Time
	NewID      func() string
	TimeFormat string

	// OnUpdateUsers and OnUpdateLogs receive the complete new lists after
	// every successful mutation. They run while the editor is locked and
	// must not call back into it.
	OnUpdateUsers func([]User)
	OnUpdateLogs  func([]AuditEntry)
}

// Result describes the outcome of one editor operation.
type Result struct {
	User User
	// Entry is nil when the operation logged nothing.
	Entry *AuditEntry
	// Promoted holds the former direct reports a delete moved to root.
	Promoted []User
	// Created is set when the operation added User to the list.
	Created bool
	// OpenEditor asks the caller to open the edit form for User.
	OpenEditor bool
	// Ignored is set when a drop was discarded before any validation.
	Ignored bool
}

// Editor owns one tenant's flat user list and its newest-first audit log.
// All mutations are check-then-act: a rejected operation leaves both lists
// untouched and fires no callbacks.
type Editor struct {
	mu       sync.Mutex
	tenantID string
	users    []User
	logs     []AuditEntry
	opts     EditorOptions
}

func NewEditor(tenantID string, users []User, logs []AuditEntry, opts EditorOptions) *Editor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.TimeFormat == "" {
		opts.TimeFormat = internal.DefaultAuditTimeFormat
	}

	e := &Editor{
		tenantID: tenantID,
		users:    make([]User, len(users)),
		logs:     make([]AuditEntry, len(logs)),
		opts:     opts,
	}
	for i, u := range users {
		e.users[i] = u.clone()
	}
	copy(e.logs, logs)
	return e
}

func (e *Editor) TenantID() string {
	return e.tenantID
}

// Users returns a copy of the flat list in list order.
func (e *Editor) Users() []User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotUsers()
}

// AuditLog returns a copy of the log, newest first.
func (e *Editor) AuditLog() []AuditEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLogs()
}

func (e *Editor) Forest() []Node {
	return BuildForest(e.Users())
}

// QuickAdd appends a blank user with role, reporting to the first user of
// the existing list (root when the list is empty).
func (e *Editor) QuickAdd(role Role) (Result, error) {
	if !role.Valid() {
		return Result{}, internal.NewValidationFieldError("role", "role must be one of Admin, VP, Director, Manager, User, IT, Marketing", internal.ErrCodeInvalidRole)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// TODO: replace the first-in-list parent with an explicit "unassigned"
	// policy once product decides where quick-added users should land.
	var parentID *string
	parentName := SystemRoot
	if len(e.users) > 0 {
		first := e.users[0]
		id := first.ID
		parentID = &id
		parentName = first.DisplayName()
	}

	now := e.opts.Now()
	u := User{
		ID:          e.opts.NewID(),
		TenantID:    e.tenantID,
		Permissions: role,
		ParentID:    parentID,
		Position:    e.nextPosition(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.users = append(e.users, u)

	entry := e.record(ActionCreate, describeCreate(&u, parentName))
	e.notify()

	return Result{User: u.clone(), Entry: entry, Created: true, OpenEditor: true}, nil
}

// Save commits an edit-form submission. An unknown id creates the user;
// a known id replaces its profile fields, logging only first name, last
// name and role changes. The reporting line is changed through Move only.
func (e *Editor) Save(u User) (Result, error) {
	if !u.Permissions.Valid() {
		return Result{}, internal.NewValidationFieldError("permissions", "role must be one of Admin, VP, Director, Manager, User, IT, Marketing", internal.ErrCodeInvalidRole)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(u.ID)
	if idx < 0 {
		return e.create(u)
	}

	before := e.users[idx]
	after := before
	after.FirstName = u.FirstName
	after.LastName = u.LastName
	after.Email = u.Email
	after.Phone = u.Phone
	after.Permissions = u.Permissions
	after.UpdatedAt = e.opts.Now()
	e.users[idx] = after

	var entry *AuditEntry
	if details := describeUpdate(&before, &after); details != "" {
		entry = e.record(ActionUpdate, details)
	}
	e.notify()

	return Result{User: after.clone(), Entry: entry}, nil
}

func (e *Editor) create(u User) (Result, error) {
	if u.ID == "" {
		u.ID = e.opts.NewID()
	}
	parentName := SystemRoot
	if u.ParentID != nil {
		parent := e.find(*u.ParentID)
		if parent == nil {
			return Result{}, internal.ErrParentNotFound
		}
		parentName = parent.DisplayName()
	}

	now := e.opts.Now()
	u.TenantID = e.tenantID
	u.Position = e.nextPosition()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u = u.clone()
	e.users = append(e.users, u)

	entry := e.record(ActionCreate, describeCreate(&u, parentName))
	e.notify()

	return Result{User: u.clone(), Entry: entry, Created: true}, nil
}

// Delete removes the user and promotes its direct reports to root.
func (e *Editor) Delete(id string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(id)
	if idx < 0 {
		return Result{}, internal.ErrUserNotFound
	}
	removed := e.users[idx].clone()
	details := describeDelete(&removed)

	now := e.opts.Now()
	remaining := make([]User, 0, len(e.users)-1)
	var promoted []User
	for i, u := range e.users {
		if i == idx {
			continue
		}
		if u.ParentID != nil && *u.ParentID == id {
			u.ParentID = nil
			u.UpdatedAt = now
			promoted = append(promoted, u.clone())
		}
		remaining = append(remaining, u)
	}
	e.users = remaining

	entry := e.record(ActionDelete, details)
	e.notify()

	return Result{User: removed, Entry: entry, Promoted: promoted}, nil
}

// Move places userID under newParentID, or at root when newParentID is nil.
// A move that would make the user report to itself or to one of its own
// descendants fails with internal.ErrInvalidHierarchyMove.
func (e *Editor) Move(userID string, newParentID *string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexOf(userID)
	if idx < 0 {
		return Result{}, internal.ErrUserNotFound
	}

	toName := SystemRoot
	if newParentID != nil {
		byID := e.byID()
		parent, ok := byID[*newParentID]
		if !ok {
			return Result{}, internal.ErrParentNotFound
		}
		if createsCycle(byID, userID, *newParentID) {
			return Result{}, internal.ErrInvalidHierarchyMove
		}
		toName = parent.DisplayName()
	}

	u := e.users[idx]
	fromName := SystemRoot
	if u.ParentID != nil {
		if oldParent := e.find(*u.ParentID); oldParent != nil {
			fromName = oldParent.DisplayName()
		}
	}

	if newParentID != nil {
		parent := *newParentID
		u.ParentID = &parent
	} else {
		u.ParentID = nil
	}
	u.UpdatedAt = e.opts.Now()
	e.users[idx] = u

	entry := e.record(ActionMove, describeMove(&u, fromName, toName))
	e.notify()

	return Result{User: u.clone(), Entry: entry}, nil
}

// Drop applies a drag-and-drop gesture. The dragged id is read from
// transfer[DragDataKey]; a drop without a dragged id or onto the dragged
// node itself is ignored.
func (e *Editor) Drop(transfer map[string]string, targetID *string) (Result, error) {
	draggedID := transfer[DragDataKey]
	if draggedID == "" || (targetID != nil && *targetID == draggedID) {
		return Result{Ignored: true}, nil
	}
	return e.Move(draggedID, targetID)
}

// record prepends an entry to the log and returns a copy of it.
func (e *Editor) record(action Action, details string) *AuditEntry {
	now := e.opts.Now()
	entry := AuditEntry{
		ID:        e.opts.NewID(),
		TenantID:  e.tenantID,
		Timestamp: now.Format(e.opts.TimeFormat),
		Action:    action,
		Details:   details,
		CreatedAt: now,
	}
	e.logs = append([]AuditEntry{entry}, e.logs...)
	out := entry
	return &out
}

func (e *Editor) notify() {
	if e.opts.OnUpdateUsers != nil {
		e.opts.OnUpdateUsers(e.snapshotUsers())
	}
	if e.opts.OnUpdateLogs != nil {
		e.opts.OnUpdateLogs(e.snapshotLogs())
	}
}

func (e *Editor) snapshotUsers() []User {
	out := make([]User, len(e.users))
	for i, u := range e.users {
		out[i] = u.clone()
	}
	return out
}

func (e *Editor) snapshotLogs() []AuditEntry {
	out := make([]AuditEntry, len(e.logs))
	copy(out, e.logs)
	return out
}

func (e *Editor) indexOf(id string) int {
	for i := range e.users {
		if e.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) find(id string) *User {
	if idx := e.indexOf(id); idx >= 0 {
		return &e.users[idx]
	}
	return nil
}

func (e *Editor) byID() map[string]*User {
	index := make(map[string]*User, len(e.users))
	for i := range e.users {
		index[e.users[i].ID] = &e.users[i]
	}
	return index
}

func (e *Editor) nextPosition() int64 {
	var max int64
	for _, u := range e.users {
		if u.Position > max {
			max = u.Position
		}
	}
	return max + 1
}
