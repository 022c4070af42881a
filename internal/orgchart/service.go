package orgchart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/salesdesk/internal"
	auditDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/audit"
	orguserDatamodel "github.com/frahmantamala/salesdesk/internal/core/datamodel/orguser"
	"github.com/frahmantamala/salesdesk/internal/core/events"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

type UserRepository interface {
	// LockTenant serializes hierarchy writers of one tenant until the
	// surrounding transaction ends.
	LockTenant(ctx context.Context, tenantID string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*orguserDatamodel.User, error)
	Create(ctx context.Context, user *orguserDatamodel.User) error
	Update(ctx context.Context, user *orguserDatamodel.User) error
	Delete(ctx context.Context, tenantID, id string) error
	DeleteAll(ctx context.Context, tenantID string) error
}

type AuditRepository interface {
	// Append stores entry as the newest entry of its tenant.
	Append(ctx context.Context, entry *auditDatamodel.Entry) error
	// ListByTenant returns up to limit entries, newest first.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*auditDatamodel.Entry, error)
	DeleteAll(ctx context.Context, tenantID string) error
}

// Store opens the unit of work a mutation runs in. Repositories passed to fn
// share one transaction; fn returning an error rolls it back.
type Store interface {
	Users() UserRepository
	Audit() AuditRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, users UserRepository, audit AuditRepository) error) error
}

// Service loads a tenant's hierarchy into an Editor for every operation and
// persists the outcome. Each mutation is one transaction.
type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	opts      EditorOptions
}

func NewService(store Store, publisher events.Publisher, logger *slog.Logger, opts EditorOptions) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Users().ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list org users", "error", err, "tenant_id", tenantID)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Tree(ctx context.Context) ([]Node, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return BuildForest(users), nil
}

func (s *Service) AuditLogs(ctx context.Context, limit int) ([]AuditEntry, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	rows, err := s.store.Audit().ListByTenant(ctx, tenantID, limit)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err, "tenant_id", tenantID)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}
	return AuditFromDataModelSlice(rows), nil
}

func (s *Service) QuickAdd(ctx context.Context, role Role) (Result, error) {
	res, err := s.mutate(ctx, func(e *Editor) (Result, error) {
		return e.QuickAdd(role)
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("org user quick-added", "tenant_id", res.User.TenantID, "user_id", res.User.ID, "role", res.User.Permissions)
	s.publish(ctx, events.EventTypeOrgUserCreated, res)
	return res, nil
}

func (s *Service) Save(ctx context.Context, u User) (Result, error) {
	res, err := s.mutate(ctx, func(e *Editor) (Result, error) {
		return e.Save(u)
	})
	if err != nil {
		return Result{}, err
	}

	if res.Created {
		s.logger.Info("org user created", "tenant_id", res.User.TenantID, "user_id", res.User.ID)
		s.publish(ctx, events.EventTypeOrgUserCreated, res)
		return res, nil
	}
	s.logger.Info("org user updated", "tenant_id", res.User.TenantID, "user_id", res.User.ID, "logged", res.Entry != nil)
	s.publish(ctx, events.EventTypeOrgUserUpdated, res)
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Result, error) {
	res, err := s.mutate(ctx, func(e *Editor) (Result, error) {
		return e.Delete(id)
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("org user deleted", "tenant_id", res.User.TenantID, "user_id", res.User.ID, "promoted", len(res.Promoted))
	s.publish(ctx, events.EventTypeOrgUserDeleted, res)
	return res, nil
}

// Move reparents userID under newParentID, or to root when it is nil.
func (s *Service) Move(ctx context.Context, userID string, newParentID *string) (Result, error) {
	return s.move(ctx, userID, newParentID, func(e *Editor) (Result, error) {
		return e.Move(userID, newParentID)
	})
}

// Drop applies a drag-and-drop gesture. Ignored drops touch nothing.
func (s *Service) Drop(ctx context.Context, transfer map[string]string, targetID *string) (Result, error) {
	draggedID := transfer[DragDataKey]
	if draggedID == "" || (targetID != nil && *targetID == draggedID) {
		return Result{Ignored: true}, nil
	}
	return s.move(ctx, draggedID, targetID, func(e *Editor) (Result, error) {
		return e.Drop(transfer, targetID)
	})
}

func (s *Service) move(ctx context.Context, userID string, newParentID *string, op func(*Editor) (Result, error)) (Result, error) {
	res, err := s.mutate(ctx, op)
	if err != nil {
		if errors.Is(err, internal.ErrInvalidHierarchyMove) {
			tenantID, _ := tenantFrom(ctx)
			s.logger.Warn("org move rejected", "tenant_id", tenantID, "user_id", userID, "target_id", derefOr(newParentID, SystemRoot))
			s.publishEvent(ctx, events.NewOrgUserEvent(events.EventTypeOrgMoveBlocked, tenantID, userID, "", newParentID, ""))
		}
		return Result{}, err
	}

	s.logger.Info("org user moved", "tenant_id", res.User.TenantID, "user_id", res.User.ID, "parent_id", derefOr(res.User.ParentID, SystemRoot))
	s.publish(ctx, events.EventTypeOrgUserMoved, res)
	return res, nil
}

// Seed replaces the tenant's hierarchy with users, parents first. The audit
// log is cleared and receives one CREATE entry per user.
func (s *Service) Seed(ctx context.Context, users []User) ([]User, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}

	var created []User
	err = s.store.WithinTx(ctx, func(ctx context.Context, userRepo UserRepository, auditRepo AuditRepository) error {
		if err := userRepo.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		if err := auditRepo.DeleteAll(ctx, tenantID); err != nil {
			return err
		}
		if err := userRepo.DeleteAll(ctx, tenantID); err != nil {
			return err
		}

		editor := NewEditor(tenantID, nil, nil, s.opts)
		for _, u := range users {
			res, err := editor.Save(u)
			if err != nil {
				return err
			}
			if err := persist(ctx, userRepo, auditRepo, res); err != nil {
				return err
			}
		}
		created = editor.Users()
		return nil
	})
	if err != nil {
		return nil, s.wrap(err, tenantID, "seed")
	}

	s.logger.Info("org hierarchy seeded", "tenant_id", tenantID, "users", len(created))
	return created, nil
}

// Clear removes every user and audit entry of the tenant.
func (s *Service) Clear(ctx context.Context) error {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, userRepo UserRepository, auditRepo AuditRepository) error {
		if err := userRepo.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		if err := auditRepo.DeleteAll(ctx, tenantID); err != nil {
			return err
		}
		return userRepo.DeleteAll(ctx, tenantID)
	})
	if err != nil {
		return s.wrap(err, tenantID, "clear")
	}
	s.logger.Info("org hierarchy cleared", "tenant_id", tenantID)
	return nil
}

// mutate runs op against a freshly loaded editor inside a transaction and
// writes the changed rows and audit entry back.
func (s *Service) mutate(ctx context.Context, op func(*Editor) (Result, error)) (Result, error) {
	tenantID, err := tenantFrom(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	err = s.store.WithinTx(ctx, func(ctx context.Context, userRepo UserRepository, auditRepo AuditRepository) error {
		if err := userRepo.LockTenant(ctx, tenantID); err != nil {
			return err
		}
		rows, err := userRepo.ListByTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		editor := NewEditor(tenantID, FromDataModelSlice(rows), nil, s.opts)
		res, err = op(editor)
		if err != nil {
			return err
		}
		if res.Ignored {
			return nil
		}
		return persist(ctx, userRepo, auditRepo, res)
	})
	if err != nil {
		return Result{}, s.wrap(err, tenantID, "mutate")
	}
	return res, nil
}

func persist(ctx context.Context, userRepo UserRepository, auditRepo AuditRepository, res Result) error {
	switch {
	case res.Entry != nil && res.Entry.Action == ActionDelete:
		for i := range res.Promoted {
			if err := userRepo.Update(ctx, ToDataModel(&res.Promoted[i])); err != nil {
				return err
			}
		}
		if err := userRepo.Delete(ctx, res.User.TenantID, res.User.ID); err != nil {
			return err
		}
	case res.Created:
		if err := userRepo.Create(ctx, ToDataModel(&res.User)); err != nil {
			return err
		}
	default:
		if err := userRepo.Update(ctx, ToDataModel(&res.User)); err != nil {
			return err
		}
	}

	if res.Entry == nil {
		return nil
	}
	return auditRepo.Append(ctx, AuditToDataModel(res.Entry))
}

// wrap passes AppErrors through and turns storage failures into internal errors.
func (s *Service) wrap(err error, tenantID, op string) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("org operation failed", "op", op, "tenant_id", tenantID, "error", err)
	return internal.NewInternalError("failed to update the org hierarchy", err)
}

func (s *Service) publish(ctx context.Context, eventType string, res Result) {
	action := ""
	if res.Entry != nil {
		action = string(res.Entry.Action)
	}
	s.publishEvent(ctx, events.NewOrgUserEvent(eventType, res.User.TenantID, res.User.ID, string(res.User.Permissions), res.User.ParentID, action))
}

func (s *Service) publishEvent(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish org event", "event_type", event.EventType(), "error", err)
	}
}

func tenantFrom(ctx context.Context) (string, error) {
	tenantID := internal.TenantFromContext(ctx)
	if tenantID == "" {
		return "", internal.ErrMissingTenant
	}
	return tenantID, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
